package main

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"
)

// progressCmd shows local learning progress
var progressCmd = &cobra.Command{
	Use:   "progress",
	Short: "Show topics studied, quiz accuracy and mastery",
	Args:  cobra.NoArgs,
	RunE:  runProgress,
}

// resetCmd clears local learning progress
var resetCmd = &cobra.Command{
	Use:   "reset",
	Short: "Clear the learner's local progress",
	Args:  cobra.NoArgs,
	RunE:  runReset,
}

func runProgress(cmd *cobra.Command, args []string) error {
	tutor, closeFn, err := openTutor()
	if err != nil {
		return err
	}
	defer closeFn()

	p, err := tutor.Progress(cmd.Context())
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	fmt.Fprintf(out, "Learner:         %s\n", learner)
	fmt.Fprintf(out, "Mastery:         %d%% %s\n", p.MasteryLevel, strings.Repeat("⭐", p.Stars()))
	fmt.Fprintf(out, "Questions asked: %d\n", p.QuestionsAsked)
	fmt.Fprintf(out, "Quiz accuracy:   %d%% (%d correct, %d wrong)\n", p.Accuracy(), p.CorrectAnswers, p.WrongAnswers)
	fmt.Fprintf(out, "Topics:          %s\n", listOrDash(p.TopicsSearched))
	fmt.Fprintf(out, "Needs practice:  %s\n", listOrDash(p.WeakTopics))
	return nil
}

func runReset(cmd *cobra.Command, args []string) error {
	tutor, closeFn, err := openTutor()
	if err != nil {
		return err
	}
	defer closeFn()

	if err := tutor.ResetProgress(cmd.Context()); err != nil {
		return err
	}
	fmt.Fprintf(cmd.OutOrStdout(), "Progress cleared for %s\n", learner)
	return nil
}

func listOrDash(items []string) string {
	if len(items) == 0 {
		return "-"
	}
	return strings.Join(items, ", ")
}
