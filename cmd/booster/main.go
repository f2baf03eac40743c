// Command booster is a terminal client for the concept-booster tutoring server.
package main

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"concept-booster/internal/client"
	"concept-booster/internal/config"
	"concept-booster/internal/db"
	"concept-booster/internal/kv"
	"concept-booster/internal/logger"
	"concept-booster/internal/models"
	"concept-booster/internal/services"
)

var (
	apiURL    string
	learner   string
	language  string
	statePath string
	logMode   string

	log *logger.Logger
)

var rootCmd = &cobra.Command{
	Use:   "booster",
	Short: "Ask doubts, learn topics and take quizzes from the terminal",
	Long: `booster talks to a concept-booster server.

Progress (topics, questions asked, quiz answers) is kept locally in a
SQLite file so it survives between runs.`,
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		if log != nil {
			return nil
		}
		l, err := logger.New(logMode)
		if err != nil {
			return err
		}
		log = l
		return nil
	},
}

func init() {
	cfg := config.LoadClient()
	rootCmd.PersistentFlags().StringVar(&apiURL, "api", cfg.APIURL, "server base URL")
	rootCmd.PersistentFlags().StringVar(&learner, "learner", cfg.Learner, "learner id progress is stored under")
	rootCmd.PersistentFlags().StringVarP(&language, "language", "l", cfg.Language, "english, hindi or hinglish")
	rootCmd.PersistentFlags().StringVar(&statePath, "state", cfg.StatePath, "local progress database")
	rootCmd.PersistentFlags().StringVar(&logMode, "log", cfg.LogMode, "log mode: dev or prod")

	rootCmd.AddCommand(askCmd, learnCmd, quizCmd, progressCmd, resetCmd)
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func languageMode() models.LanguageMode {
	return models.ParseLanguageMode(language)
}

// openTutor wires a Tutor to the server and the local progress file. The returned func closes the file.
func openTutor() (*client.Tutor, func(), error) {
	if err := os.MkdirAll(filepath.Dir(statePath), 0o755); err != nil {
		return nil, nil, fmt.Errorf("create state dir: %w", err)
	}
	conn, err := db.Open(statePath)
	if err != nil {
		return nil, nil, err
	}
	if log == nil {
		log = logger.NewNop()
	}
	progress := services.NewProgressService(kv.NewSQLiteStore(conn))
	tutor := client.NewTutor(client.New(apiURL, nil), progress, learner, log)
	return tutor, func() { conn.Close() }, nil
}

func joinArgs(args []string) string {
	return strings.TrimSpace(strings.Join(args, " "))
}
