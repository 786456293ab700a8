package commands

import (
	"errors"
	"fmt"
	"time"

	"stichting-asha/internal/database"
	"stichting-asha/internal/models"
	"stichting-asha/internal/store"
	"stichting-asha/pkg/auth"

	"github.com/spf13/cobra"
)

// CreateUserCmd creates the create-user command
func CreateUserCmd(app *AppContext) *cobra.Command {
	var (
		name  string
		email string
		role  string
		cost  int
	)

	cmd := &cobra.Command{
		Use:   "create-user",
		Short: "Create a dashboard account",
		Long:  "Creates a user with a bcrypt hashed password. The password is read from the terminal.",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			user, err := newUser(name, email, role)
			if err != nil {
				return err
			}

			password, err := readNewPassword()
			if err != nil {
				return err
			}
			user.Password, err = auth.HashPassword(password, cost)
			if err != nil {
				return err
			}

			db, err := app.Database()
			if err != nil {
				return err
			}
			ctx, cancel := app.timeout(30 * time.Second)
			defer cancel()

			users := store.NewUserStore(db.Collection(database.CollectionUsers))
			if err := users.Insert(ctx, user); err != nil {
				if errors.Is(err, store.ErrDuplicate) {
					return fmt.Errorf("a user with e-mail %s already exists", user.Email)
				}
				return fmt.Errorf("failed to create user: %w", err)
			}

			app.Logger.WithField("id", user.ID.Hex()).Debug("user inserted")
			fmt.Printf("Gebruiker %s (%s) aangemaakt met rol %s\n", user.DisplayName(), user.Email, user.Role)
			return nil
		},
	}

	cmd.Flags().StringVar(&name, "name", "", "Display name")
	cmd.Flags().StringVar(&email, "email", "", "E-mail address used to log in")
	cmd.Flags().StringVar(&role, "role", string(models.RoleVrijwilliger), "Role: beheerder, developer, vrijwilliger, stagiair or user")
	cmd.Flags().IntVar(&cost, "cost", auth.ResetCost, "bcrypt cost")
	_ = cmd.MarkFlagRequired("email")

	return cmd
}

func newUser(name, email, role string) (*models.User, error) {
	email = store.NormalizeEmail(email)
	if email == "" {
		return nil, errors.New("e-mail is required")
	}
	r, ok := models.RoleFromString(role)
	if !ok {
		return nil, fmt.Errorf("unknown role %q", role)
	}

	now := time.Now()
	return &models.User{
		Name:      name,
		Email:     email,
		Role:      r,
		CreatedAt: now,
		UpdatedAt: now,
	}, nil
}
