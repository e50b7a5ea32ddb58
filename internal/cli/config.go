package cli

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/matzehuels/cardsheet/pkg/auth"
	"github.com/matzehuels/cardsheet/pkg/config"
)

// configCommand creates the config management command.
func (c *CLI) configCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "config",
		Short: "Manage the configuration file",
	}

	cmd.AddCommand(c.configInitCommand())
	cmd.AddCommand(c.configPathCommand())
	cmd.AddCommand(c.configShowCommand())

	return cmd
}

func (c *CLI) configPath() string {
	if c.ConfigPath != "" {
		return c.ConfigPath
	}
	return config.DefaultPath()
}

// configInitCommand creates the "config init" subcommand.
func (c *CLI) configInitCommand() *cobra.Command {
	var (
		email string
		force bool
	)

	cmd := &cobra.Command{
		Use:   "init",
		Short: "Write a config file with the admin credential",
		RunE: func(cmd *cobra.Command, args []string) error {
			path := c.configPath()
			if _, err := os.Stat(path); err == nil && !force {
				return fmt.Errorf("%s already exists (use --force to overwrite)", path)
			}
			if email == "" {
				return fmt.Errorf("--email is required")
			}

			password, err := readPassword(cmd.InOrStdin(), cmd.ErrOrStderr(), true)
			if err != nil {
				return err
			}
			hash, err := auth.HashPassword(password)
			if err != nil {
				return err
			}

			cfg := config.Default()
			cfg.Admin.Email = email
			cfg.Admin.PasswordHash = hash
			if err := cfg.Write(path); err != nil {
				return err
			}
			printSuccess("Wrote config")
			printFile(path)
			printNextStep("Start the server", "cardsheet serve")
			return nil
		},
	}
	cmd.Flags().StringVar(&email, "email", "", "admin email address")
	cmd.Flags().BoolVar(&force, "force", false, "overwrite an existing file")

	return cmd
}

// configPathCommand creates the "config path" subcommand.
func (c *CLI) configPathCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "path",
		Short: "Print the config file path",
		RunE: func(cmd *cobra.Command, args []string) error {
			fmt.Fprintln(cmd.OutOrStdout(), c.configPath())
			return nil
		},
	}
}

// configShowCommand creates the "config show" subcommand.
func (c *CLI) configShowCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "show",
		Short: "Print the effective configuration with secrets masked",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := c.loadConfig()
			if err != nil {
				return err
			}
			storage := "memory"
			if cfg.Mongo.URI != "" {
				storage = "mongodb (" + cfg.Mongo.Database + ")"
			}
			sessions := "files"
			if cfg.Redis.Addr != "" {
				sessions = "redis " + cfg.Redis.Addr
			}
			uploads := "disk " + cfg.Media.Dir
			if cfg.Cloudinary.Enabled() {
				uploads = "cloudinary " + cfg.Cloudinary.CloudName
			}

			printKeyValue("listen", cfg.Server.Addr)
			printKeyValue("admin", cfg.Admin.Email)
			printKeyValue("password hash", mask(cfg.Admin.PasswordHash))
			printKeyValue("session ttl", cfg.Admin.SessionTTL.String())
			printKeyValue("storage", storage)
			printKeyValue("sessions", sessions)
			printKeyValue("uploads", uploads)
			printKeyValue("cache", cacheDescription(cfg))
			printKeyValue("export", fmt.Sprintf("%s on %s, %s quality", cfg.Export.Layout, cfg.Export.PageSize, cfg.Export.Quality))
			return nil
		},
	}
}

// hashPasswordCommand creates the hash-password command.
func (c *CLI) hashPasswordCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "hash-password",
		Short: "Print a bcrypt hash for admin.password_hash",
		Long: `Read a password and print its bcrypt hash.

On a terminal the password is prompted for twice without echo. Otherwise the
first line of standard input is used.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			password, err := readPassword(cmd.InOrStdin(), cmd.ErrOrStderr(), true)
			if err != nil {
				return err
			}
			hash, err := auth.HashPassword(password)
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), hash)
			return nil
		},
	}
}

// readPassword prompts on a terminal, or reads the first line of in.
func readPassword(in io.Reader, prompt io.Writer, confirm bool) (string, error) {
	if f, ok := in.(*os.File); ok && term.IsTerminal(int(f.Fd())) {
		fmt.Fprint(prompt, "Password: ")
		first, err := term.ReadPassword(int(f.Fd()))
		fmt.Fprintln(prompt)
		if err != nil {
			return "", fmt.Errorf("read password: %w", err)
		}
		if confirm {
			fmt.Fprint(prompt, "Repeat: ")
			second, err := term.ReadPassword(int(f.Fd()))
			fmt.Fprintln(prompt)
			if err != nil {
				return "", fmt.Errorf("read password: %w", err)
			}
			if string(first) != string(second) {
				return "", fmt.Errorf("passwords do not match")
			}
		}
		return string(first), nil
	}

	line, err := bufio.NewReader(in).ReadString('\n')
	if err != nil && err != io.EOF {
		return "", fmt.Errorf("read password: %w", err)
	}
	return strings.TrimRight(line, "\r\n"), nil
}

func mask(s string) string {
	if s == "" {
		return "(not set)"
	}
	return "********"
}

func cacheDescription(cfg *config.Config) string {
	switch {
	case cfg.Cache.Disabled:
		return "disabled"
	case cfg.Redis.Addr != "":
		return "redis " + cfg.Redis.Addr
	case cfg.Cache.Dir != "":
		return cfg.Cache.Dir
	default:
		dir, err := cacheDir()
		if err != nil {
			return "disabled"
		}
		return dir
	}
}
