package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"concept-booster/internal/client"
)

// learnCmd teaches a topic
var learnCmd = &cobra.Command{
	Use:   "learn <topic>",
	Short: "Learn a topic with steps, common mistakes and practice questions",
	Args:  cobra.MinimumNArgs(1),
	RunE:  runLearn,
}

func runLearn(cmd *cobra.Command, args []string) error {
	tutor, closeFn, err := openTutor()
	if err != nil {
		return err
	}
	defer closeFn()

	lesson, err := tutor.Lesson.Submit(cmd.Context(), languageMode(), client.TopicRequest{
		Topic:    joinArgs(args),
		Language: languageMode().String(),
	})
	if err != nil {
		return toastOr(err)
	}

	out := cmd.OutOrStdout()
	fmt.Fprintln(out, lesson.Definition)
	if len(lesson.Steps) > 0 {
		fmt.Fprintln(out, "\nSteps:")
		for i, step := range lesson.Steps {
			fmt.Fprintf(out, "  %d. %s\n", i+1, step)
		}
	}
	if len(lesson.Mistakes) > 0 {
		fmt.Fprintln(out, "\nCommon mistakes:")
		for _, m := range lesson.Mistakes {
			fmt.Fprintf(out, "  - %s\n", m)
		}
	}
	fmt.Fprintln(out, "\nPractice:")
	for i, p := range lesson.Practice {
		fmt.Fprintf(out, "  Q%d. %s\n      %s\n", i+1, p.Question, p.Answer)
	}
	return nil
}
