package main

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/noah-isme/youth-camp-api/internal/models"
	"github.com/noah-isme/youth-camp-api/internal/service"
)

func rootCmd(open opener) *cobra.Command {
	cmd := &cobra.Command{
		Use:           "campctl",
		Short:         "Youth camp back-office tool",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	cmd.AddCommand(
		versionCmd(),
		migrateCmd(open),
		reconcileCmd(open),
		editionsCmd(open),
		registrationsCmd(open),
		usersCmd(open),
	)
	return cmd
}

func versionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print the campctl version",
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Fprintln(cmd.OutOrStdout(), version)
		},
	}
}

func migrateCmd(open opener) *cobra.Command {
	return &cobra.Command{
		Use:   "migrate",
		Short: "Create or refresh the database schema",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return withBackend(open, func(b *backend) error {
				if err := b.Migrate(cmd.Context()); err != nil {
					return err
				}
				fmt.Fprintln(cmd.OutOrStdout(), "schema up to date")
				return nil
			})
		},
	}
}

// withBackend opens the backend for the duration of fn.
func withBackend(open opener, fn func(*backend) error) error {
	b, release, err := open()
	if err != nil {
		return err
	}
	defer release()
	return fn(b)
}

func reconcileCmd(open opener) *cobra.Command {
	var edition string
	cmd := &cobra.Command{
		Use:   "reconcile <statement.csv>",
		Short: "Match a payment statement against pending T-shirt orders",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			sel, err := models.ParseEditionSelection(edition)
			if err != nil {
				return err
			}
			f, err := os.Open(args[0])
			if err != nil {
				return err
			}
			defer f.Close()

			return withBackend(open, func(b *backend) error {
				result, err := b.Reconciler.ReconcileCSV(cmd.Context(), f, sel)
				if err != nil {
					return err
				}
				fmt.Fprintln(cmd.OutOrStdout(), result.Summary())
				return nil
			})
		},
	}
	cmd.Flags().StringVar(&edition, "edition", "all", "Edition id or all")
	return cmd
}

func editionsCmd(open opener) *cobra.Command {
	cmd := &cobra.Command{Use: "editions", Short: "Manage camp editions"}

	list := &cobra.Command{
		Use:   "list",
		Short: "List editions, newest first",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return withBackend(open, func(b *backend) error {
				editions, err := b.Editions.List(cmd.Context())
				if err != nil {
					return err
				}
				w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
				fmt.Fprintln(w, "ID\tYEAR\tNAME\tLOCATION\tACTIVE")
				for _, e := range editions {
					fmt.Fprintf(w, "%d\t%d\t%s\t%s\t%t\n", e.ID, e.Year, e.Name, e.EventLocation, e.IsActive)
				}
				return w.Flush()
			})
		},
	}

	toggle := func(use, short string, activate bool) *cobra.Command {
		return &cobra.Command{
			Use:   use + " <id>",
			Short: short,
			Args:  cobra.ExactArgs(1),
			RunE: func(cmd *cobra.Command, args []string) error {
				id, err := strconv.ParseInt(args[0], 10, 64)
				if err != nil || id <= 0 {
					return fmt.Errorf("invalid edition id %q", args[0])
				}
				return withBackend(open, func(b *backend) error {
					var edition *models.Edition
					if activate {
						edition, err = b.Editions.Activate(cmd.Context(), id)
					} else {
						edition, err = b.Editions.Deactivate(cmd.Context(), id)
					}
					if err != nil {
						return err
					}
					fmt.Fprintf(cmd.OutOrStdout(), "edition %d (%s) active=%t\n", edition.ID, edition.Name, edition.IsActive)
					return nil
				})
			},
		}
	}

	cmd.AddCommand(list,
		toggle("activate", "Make an edition the only active one", true),
		toggle("deactivate", "Deactivate an edition", false),
	)
	return cmd
}

func registrationsCmd(open opener) *cobra.Command {
	cmd := &cobra.Command{Use: "registrations", Short: "Review registrations"}

	var (
		edition  string
		criteria models.RegistrationCriteria
	)
	list := &cobra.Command{
		Use:   "list",
		Short: "List registrations matching the filters",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return withBackend(open, func(b *backend) error {
				board := service.NewRegistrationBoard(b.Registrations, nil)
				if err := loadBoard(cmd, board, b, edition); err != nil {
					return err
				}
				w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
				fmt.Fprintln(w, "ID\tNAME\tPHONE\tGRADE\tCHURCH\tSTATUS\tPARTICIPANT")
				for _, reg := range board.Filtered(criteria) {
					pid := "-"
					if reg.ParticipantID != nil {
						pid = *reg.ParticipantID
					}
					fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%s\t%s\t%s\n", reg.ID, reg.Name, reg.Phone, reg.Grade, reg.Church, reg.Status, pid)
				}
				return w.Flush()
			})
		},
	}
	list.Flags().StringVar(&edition, "edition", "", "Edition id or all (default: active edition)")
	list.Flags().StringVar(&criteria.Search, "search", "", "Name, phone or church search")
	list.Flags().StringVar(&criteria.Status, "status", "all", "pending, approved, rejected or all")
	list.Flags().StringVar(&criteria.Grade, "grade", "all", "Grade filter")
	list.Flags().StringVar(&criteria.Church, "church", "all", "Church filter")
	list.Flags().StringVar(&criteria.Location, "location", "all", "Location filter")

	setStatus := &cobra.Command{
		Use:   "set-status <id> <pending|approved|rejected>",
		Short: "Change a registration's status",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			status := models.RegistrationStatus(args[1])
			if !status.Valid() {
				return fmt.Errorf("unknown status %q", args[1])
			}
			return withBackend(open, func(b *backend) error {
				board := service.NewRegistrationBoard(b.Registrations, nil)
				if err := board.SelectEdition(cmd.Context(), models.AllEditions); err != nil {
					return err
				}
				reg, err := board.UpdateStatus(cmd.Context(), args[0], status)
				if err != nil {
					return err
				}
				pid := "none"
				if reg.ParticipantID != nil {
					pid = *reg.ParticipantID
				}
				fmt.Fprintf(cmd.OutOrStdout(), "%s is now %s (participant id: %s)\n", reg.Name, reg.Status, pid)
				if board.Stale() {
					fmt.Fprintln(cmd.ErrOrStderr(), "warning: list refresh failed after the update")
				}
				return nil
			})
		},
	}

	cmd.AddCommand(list, setStatus)
	return cmd
}

func loadBoard(cmd *cobra.Command, board *service.RegistrationBoard, b *backend, edition string) error {
	if edition == "" {
		return board.Load(cmd.Context(), b.Editions)
	}
	sel, err := models.ParseEditionSelection(edition)
	if err != nil {
		return err
	}
	return board.SelectEdition(cmd.Context(), sel)
}

func usersCmd(open opener) *cobra.Command {
	cmd := &cobra.Command{Use: "users", Short: "Manage back-office users"}

	var req service.CreateUserRequest
	create := &cobra.Command{
		Use:   "create-admin",
		Short: "Create an admin account",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if req.Password == "" {
				req.Password = os.Getenv("CAMPCTL_PASSWORD")
			}
			if req.Password == "" {
				return errors.New("password required (--password or CAMPCTL_PASSWORD)")
			}
			req.Role = models.RoleAdmin
			return withBackend(open, func(b *backend) error {
				user, err := b.Users.CreateUser(cmd.Context(), req)
				if err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "created %s (%s)\n", user.Email, user.ID)
				return nil
			})
		},
	}
	create.Flags().StringVar(&req.Email, "email", "", "Login email")
	create.Flags().StringVar(&req.FullName, "name", "", "Full name")
	create.Flags().StringVar(&req.Password, "password", "", "Password (min 8 characters)")
	_ = create.MarkFlagRequired("email")

	cmd.AddCommand(create)
	return cmd
}
