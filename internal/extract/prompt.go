// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package extract

import (
	"bytes"
	"text/template"
)

// extractionPromptTmpl is sent to the model for each article. It asks for
// typed entities and triples whose endpoints reuse the entity names.
var extractionPromptTmpl = template.Must(template.New("extraction").Parse(`You are an information extraction system. Read the article below and extract the named entities it discusses and the relationships between them.

For each entity, give:
- name: the entity as written in the article
- type: a short semantic category (e.g. "Organization", "Person", "Drug", "Disease", "Process", "Concept", "Location")

For each relationship, give:
- source: the name of an extracted entity
- label: a short verb phrase in snake_case (e.g. "treats", "part_of", "located_in")
- target: the name of another extracted entity

Use only entity names from your entity list as relationship endpoints. List each entity once.

Respond with a JSON object with an "entities" array and a "relationships" array. Do not include any text outside the JSON object.

Example response:
{"entities": [{"name": "Crop rotation", "type": "Process"}, {"name": "Soil", "type": "Concept"}], "relationships": [{"source": "Crop rotation", "label": "improves", "target": "Soil"}]}

Article:
{{.Text}}
`))

// renderPrompt executes the extraction prompt template with the given text,
// truncated to maxPromptChars runes.
func renderPrompt(text string) (string, error) {
	if r := []rune(text); len(r) > maxPromptChars {
		text = string(r[:maxPromptChars])
	}
	var buf bytes.Buffer
	if err := extractionPromptTmpl.Execute(&buf, struct{ Text string }{Text: text}); err != nil {
		return "", err
	}
	return buf.String(), nil
}
