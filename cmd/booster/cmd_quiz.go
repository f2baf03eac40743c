package main

import (
	"bufio"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"concept-booster/internal/client"
	"concept-booster/internal/models"
)

var quizCount int

// quizCmd runs an interactive multiple choice quiz
var quizCmd = &cobra.Command{
	Use:   "quiz <topic>",
	Short: "Take a multiple choice quiz; answer with 1-4 or a-d",
	Args:  cobra.MinimumNArgs(1),
	RunE:  runQuiz,
}

func init() {
	quizCmd.Flags().IntVarP(&quizCount, "count", "n", 5, "number of questions to request")
}

func runQuiz(cmd *cobra.Command, args []string) error {
	topic := joinArgs(args)
	tutor, closeFn, err := openTutor()
	if err != nil {
		return err
	}
	defer closeFn()

	questions, err := tutor.Quiz.Submit(cmd.Context(), languageMode(), client.TopicRequest{
		Topic:    topic,
		Language: languageMode().String(),
		Count:    quizCount,
	})
	if err != nil {
		return toastOr(err)
	}

	out := cmd.OutOrStdout()
	in := bufio.NewScanner(cmd.InOrStdin())
	correct, answered := 0, 0
	for i, q := range questions {
		fmt.Fprintf(out, "\nQ%d/%d. %s\n", i+1, len(questions), q.Question)
		for j, opt := range q.Options {
			fmt.Fprintf(out, "  %c) %s\n", 'a'+j, opt)
		}

		choice, ok := readChoice(in, out)
		if !ok {
			break
		}
		answered++
		isCorrect := choice == q.Correct
		if isCorrect {
			correct++
			fmt.Fprintln(out, "✅ Correct!")
		} else {
			fmt.Fprintf(out, "❌ The answer is %c) %s\n", 'a'+q.Correct, q.Options[q.Correct])
		}
		if q.Explanation != "" {
			fmt.Fprintln(out, q.Explanation)
		}
		if _, err := tutor.RecordAnswer(cmd.Context(), topic, isCorrect); err != nil {
			log.Warn("record answer", "error", err)
		}
	}

	fmt.Fprintf(out, "\nScore: %d/%d\n", correct, len(questions))
	if answered < len(questions) {
		fmt.Fprintf(out, "(%d unanswered)\n", len(questions)-answered)
	}
	return nil
}

// readChoice reads until it gets a valid option or input ends.
func readChoice(in *bufio.Scanner, out io.Writer) (int, bool) {
	for {
		fmt.Fprint(out, "> ")
		if !in.Scan() {
			return 0, false
		}
		if choice, ok := parseChoice(in.Text()); ok {
			return choice, true
		}
		fmt.Fprintln(out, "Answer with 1-4 or a-d.")
	}
}

func parseChoice(raw string) (int, bool) {
	raw = strings.ToLower(strings.TrimSpace(raw))
	if len(raw) == 1 && raw[0] >= 'a' && raw[0] < 'a'+models.QuizOptionCount {
		return int(raw[0] - 'a'), true
	}
	n, err := strconv.Atoi(raw)
	if err != nil || n < 1 || n > models.QuizOptionCount {
		return 0, false
	}
	return n - 1, true
}
