package drafts

import (
	"fmt"

	"gopkg.in/yaml.v3"

	"github.com/oakmund/stanza/internal/parser"
)

// setPublished returns the file content with `published: true` in its
// frontmatter. An existing published key is flipped in place (never
// duplicated); a missing key is appended; a file without frontmatter
// gains a minimal block. Key order and other keys are preserved via a
// yaml.Node round-trip.
func setPublished(data []byte) ([]byte, error) {
	block, body, found := parser.Split(data)
	if !found {
		return []byte("---\npublished: true\n---\n\n" + string(data)), nil
	}

	var doc yaml.Node
	if err := yaml.Unmarshal(block, &doc); err != nil {
		return nil, fmt.Errorf("drafts: frontmatter is not valid YAML: %w", err)
	}
	if len(doc.Content) == 0 || doc.Content[0].Kind != yaml.MappingNode {
		return nil, fmt.Errorf("drafts: frontmatter is not a key/value mapping")
	}

	mapping := doc.Content[0]
	trueNode := &yaml.Node{Kind: yaml.ScalarNode, Tag: "!!bool", Value: "true"}

	replaced := false
	for i := 0; i < len(mapping.Content)-1; i += 2 {
		if mapping.Content[i].Value == "published" {
			mapping.Content[i+1] = trueNode
			replaced = true
			break
		}
	}
	if !replaced {
		mapping.Content = append(mapping.Content,
			&yaml.Node{Kind: yaml.ScalarNode, Value: "published"},
			trueNode,
		)
	}

	out, err := yaml.Marshal(mapping)
	if err != nil {
		return nil, fmt.Errorf("drafts: marshal frontmatter: %w", err)
	}

	return []byte("---\n" + string(out) + "---\n\n" + body), nil
}
