package cli

import (
	"encoding/json"
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"lms-grading-service/internal/app"
	"lms-grading-service/internal/domain"
)

// NewGradeCmd grades an answers file against a test file without any storage.
func NewGradeCmd() *cobra.Command {
	var testFile, answersFile string
	cmd := &cobra.Command{
		Use:   "grade",
		Short: "Grade a JSON answers file against a JSON test file",
		RunE: func(cmd *cobra.Command, args []string) error {
			var test domain.Test
			if err := readJSONFile(testFile, &test); err != nil {
				return err
			}
			var answers []domain.RawAnswer
			if err := readJSONFile(answersFile, &answers); err != nil {
				return err
			}

			report, err := app.BuildReport(test, answers)
			var verr *domain.ValidationError
			if errors.As(err, &verr) {
				for _, e := range verr.Errors {
					fmt.Fprintf(cmd.ErrOrStderr(), "answer %d (%s): %s\n", e.Index, e.QuestionID, e.Message)
				}
			}
			if err != nil {
				return err
			}

			enc := json.NewEncoder(cmd.OutOrStdout())
			enc.SetIndent("", "  ")
			return enc.Encode(report)
		},
	}
	cmd.Flags().StringVar(&testFile, "test", "", "test definition JSON")
	cmd.Flags().StringVar(&answersFile, "answers", "", "JSON array of answers")
	_ = cmd.MarkFlagRequired("test")
	_ = cmd.MarkFlagRequired("answers")
	return cmd
}
