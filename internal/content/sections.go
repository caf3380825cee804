package content

import "fmt"

// SectionItem is one translatable entry of a section, as submitted by the
// application layer.
type SectionItem struct {
	Type  string `json:"type"`
	Value string `json:"value"`
}

// Section is a named group of related content. DisplayTitle, when present,
// is preferred over Title as the group name passed to the translator for
// context.
type Section struct {
	SectionID    string        `json:"section_id"`
	Title        string        `json:"title"`
	DisplayTitle string        `json:"display_title,omitempty"`
	Content      []SectionItem `json:"content"`
}

// Job is the application-facing input shape of one localization job.
type Job struct {
	Sections       []Section `json:"sections"`
	TargetLanguage string    `json:"target_language"`
}

// JobResult mirrors the input shape with translated values.
type JobResult struct {
	Sections       []Section `json:"sections"`
	TargetLanguage string    `json:"target_language"`
	TotalSections  int       `json:"total_sections"`
}

// Validate rejects jobs that cannot be processed at all. Anything that
// passes here is guaranteed to produce a complete (possibly partially
// untranslated) result document.
func (j Job) Validate() error {
	if j.TargetLanguage == "" {
		return fmt.Errorf("target_language is required")
	}
	if len(j.Sections) == 0 {
		return fmt.Errorf("at least one section is required")
	}
	for i, s := range j.Sections {
		for k, item := range s.Content {
			if item.Value == "" {
				return fmt.Errorf("section %d item %d: value is empty", i, k)
			}
		}
	}
	return nil
}

// groupName returns the display name of a section for translation context.
func (s Section) groupName(position int) string {
	switch {
	case s.DisplayTitle != "":
		return s.DisplayTitle
	case s.Title != "":
		return s.Title
	default:
		return fmt.Sprintf("Section %d", position)
	}
}

// Document converts the shallow sections shape into the nested document
// form: pages.group_N carries a meta_data name plus item_M leaves. Group
// and item numbering is positional and 1-based, so the conversion is
// reversible by path.
func (j Job) Document() Document {
	pages := map[string]any{}
	for i, s := range j.Sections {
		group := map[string]any{
			"meta_data": s.groupName(i + 1),
		}
		for k, item := range s.Content {
			group[fmt.Sprintf("item_%d", k+1)] = map[string]any{
				"type":  item.Type,
				"value": item.Value,
			}
		}
		pages[fmt.Sprintf("group_%d", i+1)] = group
	}
	return Document{"pages": pages}
}

// Restore maps a translated document produced from j.Document() back onto
// the sections shape. Items whose translated leaf is missing keep their
// original value.
func (j Job) Restore(translated Document) JobResult {
	out := JobResult{
		TargetLanguage: j.TargetLanguage,
		TotalSections:  len(j.Sections),
	}
	pages, _ := translated["pages"].(map[string]any)
	for i, s := range j.Sections {
		sec := Section{
			SectionID:    s.SectionID,
			Title:        s.Title,
			DisplayTitle: s.DisplayTitle,
			Content:      make([]SectionItem, len(s.Content)),
		}
		group, _ := pages[fmt.Sprintf("group_%d", i+1)].(map[string]any)
		for k, item := range s.Content {
			value := item.Value
			if leaf, ok := group[fmt.Sprintf("item_%d", k+1)].(map[string]any); ok {
				if _, v, isLeaf := Leaf(leaf); isLeaf && v != "" {
					value = v
				}
			}
			sec.Content[k] = SectionItem{Type: item.Type, Value: value}
		}
		out.Sections = append(out.Sections, sec)
	}
	return out
}
