package store

import (
	"context"
	"fmt"
	"time"

	"aptledger/internal/auth"
	"aptledger/internal/core"
)

// Seed populates an empty store with the bootstrap admin account and the
// sample rooms every fresh deployment starts from. It is a no-op when
// users already exist, so restarting against a persistent store never
// duplicates records.
func Seed(ctx context.Context, s Store) error {
	users, err := s.ListUsers(ctx)
	if err != nil {
		return fmt.Errorf("list users: %w", err)
	}
	if len(users) > 0 {
		return nil
	}

	hash, err := auth.HashPassword("admin123")
	if err != nil {
		return fmt.Errorf("hash admin password: %w", err)
	}
	_, err = s.CreateUser(ctx, core.InsertUser{
		Username:             "admin",
		Password:             hash,
		Name:                 "Admin User",
		Email:                "admin@balajiapt.com",
		Role:                 core.RoleAdmin,
		PreferredLanguage:    "en",
		NotificationsEnabled: true,
	})
	if err != nil {
		return fmt.Errorf("create admin user: %w", err)
	}

	// Dues fall on the 15th of the current month.
	now := time.Now()
	dueDate := time.Date(now.Year(), now.Month(), 15, 0, 0, 0, 0, time.UTC)

	rooms := []core.InsertRoom{
		{RoomNumber: "101", ResidentName: "Anil Kumar", ContactNumber: "+91 98765 43210", MonthlyFee: core.DefaultMonthlyFee, DueDate: dueDate},
		{RoomNumber: "102", ResidentName: "Rahul Sharma", ContactNumber: "+91 87654 32109", MonthlyFee: core.DefaultMonthlyFee, TotalDue: core.DefaultMonthlyFee, DueDate: dueDate},
		{RoomNumber: "201", ResidentName: "Priya Patel", ContactNumber: "+91 76543 21098", MonthlyFee: core.DefaultMonthlyFee, TotalDue: core.DefaultMonthlyFee, DueDate: dueDate},
		{RoomNumber: "202", ResidentName: "Suresh Kumar", ContactNumber: "+91 65432 10987", MonthlyFee: core.DefaultMonthlyFee, DueDate: dueDate},
	}
	for _, r := range rooms {
		if _, err := s.CreateRoom(ctx, r); err != nil {
			return fmt.Errorf("seed room %s: %w", r.RoomNumber, err)
		}
	}
	return nil
}
