package retrieval

import (
	"bytes"
	"encoding/csv"
	"fmt"
	"io"
	"strings"
)

// MarshalCSV renders pairs as a question,answer CSV with a header row.
func MarshalCSV(pairs []QAPair) []byte {
	var buf bytes.Buffer
	w := csv.NewWriter(&buf)
	_ = w.Write([]string{"question", "answer"})
	for _, pair := range pairs {
		_ = w.Write([]string{pair.Question, pair.Answer})
	}
	w.Flush()
	return buf.Bytes()
}

// ParseCSV reads question,answer rows, tolerating an optional header.
func ParseCSV(r io.Reader) ([]QAPair, error) {
	reader := csv.NewReader(r)
	reader.FieldsPerRecord = -1
	var pairs []QAPair
	for i := 0; ; i++ {
		record, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("read csv row %d: %w", i+1, err)
		}
		if len(record) < 2 {
			return nil, fmt.Errorf("csv row %d: expected question,answer columns", i+1)
		}
		if i == 0 && strings.EqualFold(strings.TrimSpace(record[0]), "question") {
			continue
		}
		pairs = append(pairs, QAPair{Question: record[0], Answer: record[1]})
	}
	return pairs, nil
}
