/*
Copyright © 2026 NAME HERE <EMAIL ADDRESS>
*/
package cmd

import (
	"errors"
	"fmt"
	"time"

	"github.com/spf13/cobra"
	"golang.org/x/crypto/bcrypt"

	"github.com/agrunetcore/farmhub/config"
	"github.com/agrunetcore/farmhub/internal/store"
	"github.com/agrunetcore/farmhub/types"
)

// Demo account for local sign-in.
const (
	demoEmail    = "Deekibraa@gmail.com"
	demoPassword = "123456"
)

// seedCmd represents the seed command.
var seedCmd = &cobra.Command{
	Use:   "seed",
	Short: "Seed the demo superadmin account",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg := config.LoadConfig()
		users := store.NewUserRepository(cfg.UserDataFile())

		hashed, err := bcrypt.GenerateFromPassword([]byte(demoPassword), bcrypt.DefaultCost)
		if err != nil {
			return err
		}

		_, err = users.Create(cmd.Context(), types.User{
			ID:           "1",
			Name:         "Test User",
			Email:        demoEmail,
			Subcity:      "DemoCity",
			Role:         types.RoleSuperAdmin,
			Avatar:       "/images/default-avatar.png",
			PasswordHash: string(hashed),
			CreatedAt:    time.Now().UTC(),
		})
		if err != nil {
			if errors.Is(err, store.ErrConflict) {
				fmt.Println("demo account already seeded")
				return nil
			}
			return err
		}

		fmt.Printf("seeded demo superadmin %s\n", demoEmail)
		return nil
	},
}

func init() {
	rootCmd.AddCommand(seedCmd)
}
