// Package docs embeds the vth help topics shown by `vth topic`.
package docs

import (
	"embed"
	"fmt"
	"io/fs"
	"path"
	"slices"
	"strings"
)

//go:embed *.md
var docs embed.FS

// Readme is the topic shown when none is asked for. It indexes the others and is
// not listed among them.
const Readme = "readme"

// Topic returns the markdown of one topic. Names are case insensitive and may
// carry the .md extension.
func Topic(name string) (string, error) {
	topic := normalize(name)
	if topic == "" || strings.ContainsAny(topic, `/\`) {
		return "", fmt.Errorf("invalid topic name %q", name)
	}
	content, err := docs.ReadFile(topic + ".md")
	if err != nil {
		all, _ := AllTopics()
		return "", fmt.Errorf("unknown topic %q, try one of: %s", name, strings.Join(all, ", "))
	}
	return string(content), nil
}

// Topics concatenates the given topics, "*" standing for every listed topic.
func Topics(names ...string) (string, error) {
	var b strings.Builder
	for _, name := range names {
		expanded := []string{name}
		if strings.TrimSpace(name) == "*" {
			all, err := AllTopics()
			if err != nil {
				return "", err
			}
			expanded = all
		}
		for _, topic := range expanded {
			content, err := Topic(topic)
			if err != nil {
				return "", err
			}
			b.WriteString(content)
			b.WriteString("\n")
		}
	}
	return b.String(), nil
}

// AllTopics lists the topics, sorted, the readme excluded.
func AllTopics() ([]string, error) {
	files, err := fs.Glob(docs, "*.md")
	if err != nil {
		return nil, err
	}
	var topics []string
	for _, f := range files {
		if topic := strings.TrimSuffix(path.Base(f), ".md"); topic != Readme {
			topics = append(topics, topic)
		}
	}
	slices.Sort(topics)
	return topics, nil
}

func normalize(name string) string {
	name = strings.ToLower(strings.TrimSpace(name))
	return strings.TrimSuffix(name, ".md")
}
