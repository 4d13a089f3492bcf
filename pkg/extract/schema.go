// pkg/extract/schema.go
package extract

import (
	"go.uber.org/zap"

	"github.com/feedbackops/cleanse/pkg/model"
)

// FeedbackColumns is the target customer-feedback schema that every source,
// structured or not, is normalized to before cleaning.
var FeedbackColumns = []string{"id", "name", "email", "rating", "review_text", "date", "source_type", "filename"}

// SchemaMapper transforms the unstructured filename/content/source_type
// table into the customer-feedback schema: content becomes review_text,
// identity columns are filled with placeholders.
type SchemaMapper struct {
	placeholder   string
	maxTextLength int
	defaultRating int
	logger        *zap.Logger
}

// NewSchemaMapper creates a schema mapper. placeholder fills the identity
// columns; review text longer than maxTextLength runes is truncated.
// defaultRating stamps the rating column when non-negative; -1 leaves the
// rating missing so the cleaning strategy fills it.
func NewSchemaMapper(placeholder string, maxTextLength, defaultRating int, logger *zap.Logger) *SchemaMapper {
	return &SchemaMapper{
		placeholder:   placeholder,
		maxTextLength: maxTextLength,
		defaultRating: defaultRating,
		logger:        logger,
	}
}

// MapToFeedbackSchema converts an unstructured dataset to the feedback
// schema. Sequential ids start at startID so records appended after an
// existing structured batch keep unique identifiers.
func (m *SchemaMapper) MapToFeedbackSchema(ds *model.Dataset, startID int) *model.Dataset {
	out := model.NewDataset(FeedbackColumns)
	if ds.Empty() {
		return out
	}

	var rating interface{}
	if m.defaultRating >= 0 {
		rating = m.defaultRating
	}

	for i, row := range ds.Rows {
		content, _ := row.Values[ColumnContent].(string)
		if m.maxTextLength > 0 {
			if runes := []rune(content); len(runes) > m.maxTextLength {
				content = string(runes[:m.maxTextLength])
			}
		}

		out.AppendRow(map[string]interface{}{
			"id":          startID + i,
			"name":        m.placeholder,
			"email":       m.placeholder,
			"rating":      rating,
			"review_text": content,
			"date":        nil,
			"source_type": row.Values[ColumnSourceType],
			"filename":    row.Values[ColumnFilename],
		})
	}

	m.logger.Info("Transformed unstructured records to feedback schema",
		zap.Int("records", out.Len()))
	return out
}
