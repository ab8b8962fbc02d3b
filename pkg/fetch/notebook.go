package fetch

import (
	"encoding/json"
	"strings"

	"github.com/nagelea/keysentry/pkg/errors"
)

type (
	notebook struct {
		Cells []notebookCell `json:"cells"`
	}
	notebookCell struct {
		CellType string           `json:"cell_type"`
		Source   multiLineText    `json:"source"`
		Outputs  []notebookOutput `json:"outputs"`
	}
	notebookOutput struct {
		OutputType string                     `json:"output_type"`
		Text       multiLineText              `json:"text"`
		Data       map[string]json.RawMessage `json:"data"`
	}

	// Notebook JSON stores text as either one string or a string array
	multiLineText string
)

// FlattenNotebook concatenates every code-cell source and every textual
// output into one linear buffer. Secrets show up in executed output as often
// as in the source itself.
func FlattenNotebook(raw []byte) (result string, err error) {
	var nb notebook
	if err = json.Unmarshal(raw, &nb); err != nil {
		err = errors.Wrap(err, "unable to parse notebook document")
		return
	}

	var sb strings.Builder
	for _, cell := range nb.Cells {
		if cell.CellType != "code" {
			continue
		}

		sb.WriteString(string(cell.Source))
		sb.WriteString("\n")

		for _, output := range cell.Outputs {
			if output.Text != "" {
				sb.WriteString(string(output.Text))
				sb.WriteString("\n")
			}
			if plain, ok := output.Data["text/plain"]; ok {
				var text multiLineText
				if jsonErr := json.Unmarshal(plain, &text); jsonErr == nil {
					sb.WriteString(string(text))
					sb.WriteString("\n")
				}
			}
		}
	}

	result = sb.String()

	return
}

func (t *multiLineText) UnmarshalJSON(raw []byte) (err error) {
	var single string
	if err = json.Unmarshal(raw, &single); err == nil {
		*t = multiLineText(single)
		return
	}

	var lines []string
	if err = json.Unmarshal(raw, &lines); err != nil {
		return errors.Wrap(err, "notebook text is neither string nor string array")
	}
	*t = multiLineText(strings.Join(lines, ""))

	return
}
