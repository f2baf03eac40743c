package main

import (
	"encoding/base64"
	"errors"
	"fmt"
	"net/http"
	"os"

	"github.com/spf13/cobra"

	"concept-booster/internal/client"
)

const maxWorksheetRunes = 4000

var (
	askImage string
	askPDF   string
)

// askCmd answers a doubt
var askCmd = &cobra.Command{
	Use:   "ask [question]",
	Short: "Ask a doubt and get a step-by-step explanation",
	Long: `Ask a doubt. Attach a photo with --image or a worksheet with --pdf;
the question may be left empty when something is attached.`,
	RunE: runAsk,
}

func init() {
	askCmd.Flags().StringVar(&askImage, "image", "", "image file to attach")
	askCmd.Flags().StringVar(&askPDF, "pdf", "", "PDF worksheet whose text is added to the question")
}

func runAsk(cmd *cobra.Command, args []string) error {
	req := client.DoubtRequest{Question: joinArgs(args), Language: languageMode().String()}

	if askPDF != "" {
		text, err := client.ExtractPDFText(askPDF, maxWorksheetRunes)
		if err != nil {
			return err
		}
		if req.Question == "" {
			req.Question = "Please explain this worksheet."
		}
		req.Question += "\n\nWorksheet text: " + text
	}
	if askImage != "" {
		uri, err := imageDataURI(askImage)
		if err != nil {
			return err
		}
		req.Image = uri
	}
	if req.Question == "" && req.Image == "" {
		return fmt.Errorf("type a question or attach --image/--pdf")
	}

	tutor, closeFn, err := openTutor()
	if err != nil {
		return err
	}
	defer closeFn()

	resp, err := tutor.Doubt.Submit(cmd.Context(), languageMode(), req)
	if err != nil {
		return toastOr(err)
	}

	out := cmd.OutOrStdout()
	fmt.Fprintln(out, resp.Explanation)
	fmt.Fprintln(out)
	for i, step := range resp.Steps {
		fmt.Fprintf(out, "%d. %s\n", i+1, step)
	}
	if resp.Example != "" {
		fmt.Fprintf(out, "\n%s\n", resp.Example)
	}
	if resp.Tip != "" {
		fmt.Fprintf(out, "%s\n", resp.Tip)
	}
	return nil
}

func imageDataURI(path string) (string, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return "", fmt.Errorf("read image: %w", err)
	}
	mime := http.DetectContentType(raw)
	return "data:" + mime + ";base64," + base64.StdEncoding.EncodeToString(raw), nil
}

// toastOr prefers the learner-facing toast over the raw error.
func toastOr(err error) error {
	var toast *client.ToastError
	if errors.As(err, &toast) {
		log.Debug("request failed", "error", toast.Err)
		return fmt.Errorf("%s", toast.Toast)
	}
	return err
}
