// cmd/cleanse/sample.go
package main

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"
)

var sampleReviews = []string{
	"The customer service was excellent and very helpful! The representative went above and beyond to solve my issue quickly.",
	"Product arrived damaged, very disappointed. The packaging was inadequate and the item was broken upon arrival.",
	"Amazing product quality and fast shipping. I will definitely purchase from this company again. Five stars!",
	"Average experience. The product works as described but the setup instructions were confusing and customer support was slow to respond.",
}

const sampleCSV = `id,name,email,rating,review_text,date
1,John Doe,john@email.com,5,"Great product, loved it!",2024-01-15
2,Jane Smith,jane@email.com,3,"It was okay, could be better",2024-01-16
3,Bob Wilson,bob@email.com,4,"Pretty good overall",2024-01-17
4,Alice Brown,alice@email.com,2,"The product was fine but shipping was slow",2024-01-18
5,Charlie Davis,,5,"Excellent quality and fast delivery",
6,Diana Evans,diana@email.com,1,"Terrible experience, product didn't work",2024-01-19
`

func newSampleDataCmd() *cobra.Command {
	var dir string

	cmd := &cobra.Command{
		Use:   "sample-data",
		Short: "Write a demo fixture for trying the pipeline",
		RunE: func(cmd *cobra.Command, _ []string) error {
			reviewsDir := filepath.Join(dir, "raw", "reviews")
			if err := os.MkdirAll(reviewsDir, 0o755); err != nil {
				return fmt.Errorf("failed to create sample directories: %w", err)
			}
			if err := os.MkdirAll(filepath.Join(dir, "processed"), 0o755); err != nil {
				return fmt.Errorf("failed to create sample directories: %w", err)
			}

			for i, review := range sampleReviews {
				path := filepath.Join(reviewsDir, fmt.Sprintf("review%d.txt", i+1))
				if err := os.WriteFile(path, []byte(review), 0o644); err != nil {
					return fmt.Errorf("failed to write sample review: %w", err)
				}
			}

			csvPath := filepath.Join(dir, "raw", "customer_data.csv")
			if err := os.WriteFile(csvPath, []byte(sampleCSV), 0o644); err != nil {
				return fmt.Errorf("failed to write sample CSV: %w", err)
			}

			fmt.Fprintf(os.Stdout, "Sample data created under %s\n", dir)
			fmt.Fprintf(os.Stdout, "Try: cleanse run --structured %s --unstructured %s --strategy statistical\n",
				csvPath, reviewsDir)
			return nil
		},
	}

	cmd.Flags().StringVar(&dir, "dir", "data", "directory to create the fixture in")
	return cmd
}
