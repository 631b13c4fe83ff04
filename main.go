package main

import (
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"
	"golang.org/x/term"

	"library-lending/library"
)

var version = "dev"

type rootOptions struct {
	configPath string
	seedFile   string
	verbose    bool
}

func newRootCmd(in io.Reader, out io.Writer) *cobra.Command {
	opts := &rootOptions{}

	root := &cobra.Command{
		Use:   "library",
		Short: "Library catalog and lending tracker",
		Long: `An interactive admin menu for managing books, members and
issue/return records. All data lives in memory for the life of the process;
use the Export Report menu entry to keep a copy.`,
		SilenceUsage: true,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runMenu(cmd, opts, in, out)
		},
	}

	root.Flags().StringVarP(&opts.configPath, "config", "c", defaultConfigFile, "path to the TOML config file")
	root.Flags().StringVar(&opts.seedFile, "seed", "", "TOML file of books and members to preload")
	root.Flags().BoolVarP(&opts.verbose, "verbose", "v", false, "log lending activity to stderr")

	root.AddCommand(&cobra.Command{
		Use:   "version",
		Short: "Print the version number",
		Run: func(cmd *cobra.Command, _ []string) {
			cmd.Printf("library version %s\n", version)
		},
	})
	return root
}

func runMenu(cmd *cobra.Command, opts *rootOptions, in io.Reader, out io.Writer) error {
	cfg, err := loadConfig(opts.configPath, cmd.Flags().Changed("config"))
	if err != nil {
		return err
	}
	if opts.seedFile != "" {
		cfg.Catalog.SeedFile = opts.seedFile
	}
	if opts.verbose {
		cfg.Log.Verbose = true
	}

	logger, err := newLogger(cfg.Log.Verbose)
	if err != nil {
		return err
	}
	defer logger.Sync() //nolint:errcheck

	auth, err := newAuthenticator(cfg.Admin)
	if err != nil {
		return err
	}

	mgr := library.NewLibraryManager(auth, library.WithLogger(logger))
	if cfg.Catalog.SeedFile != "" {
		seed, err := library.LoadSeedFile(cfg.Catalog.SeedFile)
		if err != nil {
			return fmt.Errorf("load seed: %w", err)
		}
		if err := mgr.ApplySeed(seed); err != nil {
			return err
		}
	}

	m := newMenu(in, out, mgr)
	m.exportDir = cfg.Export.Dir
	if f, ok := in.(*os.File); ok && term.IsTerminal(int(f.Fd())) {
		m.readPassword = terminalPassword(f, out)
	}
	return m.run()
}

func newLogger(verbose bool) (*zap.Logger, error) {
	if !verbose {
		return zap.NewNop(), nil
	}
	return zap.NewDevelopment()
}

func newAuthenticator(cfg AdminConfig) (library.Authenticator, error) {
	if cfg.PasswordHash == "" {
		hash, err := library.HashPassword(library.DefaultAdminPassword, bcrypt.DefaultCost)
		if err != nil {
			return nil, err
		}
		cfg.PasswordHash = hash
	}
	return library.NewPasswordAuthenticator(cfg.Username, cfg.PasswordHash)
}

// terminalPassword reads a password with echo disabled.
func terminalPassword(f *os.File, out io.Writer) func(string) (string, error) {
	return func(prompt string) (string, error) {
		fmt.Fprint(out, prompt)
		b, err := term.ReadPassword(int(f.Fd()))
		fmt.Fprintln(out)
		if err != nil {
			return "", err
		}
		return string(b), nil
	}
}

func main() {
	if err := newRootCmd(os.Stdin, os.Stdout).Execute(); err != nil {
		os.Exit(1)
	}
}
