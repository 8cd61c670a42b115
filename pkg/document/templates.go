package document

import (
	"fmt"
	"slices"
	"time"

	"github.com/aretw0/quire/pkg/core"
)

// TemplateBlock is a block draft inside a template.
type TemplateBlock struct {
	Type     core.BlockType  `yaml:"type" json:"type"`
	Content  string          `yaml:"content" json:"content"`
	Children []TemplateBlock `yaml:"children,omitempty" json:"children,omitempty"`
}

// Template is a named page skeleton.
type Template struct {
	ID          string          `yaml:"id" json:"id"`
	Name        string          `yaml:"name" json:"name"`
	Description string          `yaml:"description,omitempty" json:"description,omitempty"`
	Icon        string          `yaml:"icon,omitempty" json:"icon,omitempty"`
	Blocks      []TemplateBlock `yaml:"blocks" json:"blocks"`
}

var builtinTemplates = []Template{
	{
		ID:          "meeting-notes",
		Name:        "Meeting Notes",
		Description: "Agenda, notes and action items",
		Icon:        "📝",
		Blocks: []TemplateBlock{
			{Type: core.BlockHeading, Content: "Agenda"},
			{Type: core.BlockText, Content: ""},
			{Type: core.BlockHeading, Content: "Notes"},
			{Type: core.BlockText, Content: ""},
			{Type: core.BlockHeading, Content: "Action Items"},
			{Type: core.BlockTodo, Content: ""},
		},
	},
	{
		ID:          "todo-list",
		Name:        "To-do List",
		Description: "A simple checklist",
		Icon:        "✅",
		Blocks: []TemplateBlock{
			{Type: core.BlockHeading, Content: "Tasks"},
			{Type: core.BlockTodo, Content: ""},
			{Type: core.BlockTodo, Content: ""},
			{Type: core.BlockTodo, Content: ""},
		},
	},
	{
		ID:          "journal",
		Name:        "Daily Journal",
		Description: "Reflect on the day",
		Icon:        "📔",
		Blocks: []TemplateBlock{
			{Type: core.BlockHeading, Content: "Today"},
			{Type: core.BlockText, Content: ""},
			{Type: core.BlockHeading, Content: "Grateful for"},
			{Type: core.BlockQuote, Content: ""},
		},
	},
	{
		ID:          "project-brief",
		Name:        "Project Brief",
		Description: "Goals, scope and milestones",
		Icon:        "🚀",
		Blocks: []TemplateBlock{
			{Type: core.BlockHeading, Content: "Goals"},
			{Type: core.BlockText, Content: ""},
			{Type: core.BlockHeading, Content: "Scope"},
			{Type: core.BlockText, Content: ""},
			{Type: core.BlockHeading, Content: "Milestones"},
			{Type: core.BlockTodo, Content: ""},
		},
	},
}

// Templates returns the registered templates in registration order.
func (s *Service) Templates() []Template {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]Template, 0, len(s.templateOrder))
	for _, id := range s.templateOrder {
		out = append(out, s.templates[id])
	}
	return out
}

// CreatePageFromTemplate materializes a template into a new page of the
// workspace. Unknown templates return core.ErrTemplateNotFound. An unknown
// workspace is a silent no-op like CreatePage.
func (s *Service) CreatePageFromTemplate(workspaceID, templateID string) (string, error) {
	s.mu.RLock()
	tmpl, ok := s.templates[templateID]
	s.mu.RUnlock()
	if !ok {
		return "", fmt.Errorf("%w: %s", core.ErrTemplateNotFound, templateID)
	}

	return s.CreatePage(workspaceID, PageDraft{
		Title:    tmpl.Name,
		Icon:     tmpl.Icon,
		Blocks:   s.materialize(tmpl.Blocks, s.now()),
		Template: tmpl.ID,
	}), nil
}

// materialize expands template drafts into blocks with fresh IDs and timestamps.
func (s *Service) materialize(drafts []TemplateBlock, now time.Time) []core.Block {
	blocks := make([]core.Block, len(drafts))
	for i, d := range drafts {
		typ := d.Type
		if typ == "" {
			typ = core.BlockText
		}
		blocks[i] = core.Block{
			ID:        s.newID(),
			Type:      typ,
			Content:   d.Content,
			Children:  s.materialize(d.Children, now),
			CreatedAt: now,
			UpdatedAt: now,
		}
	}
	return blocks
}

func (s *Service) registerTemplate(t Template) {
	if t.ID == "" {
		return
	}
	if _, exists := s.templates[t.ID]; !exists {
		s.templateOrder = append(s.templateOrder, t.ID)
	}
	s.templates[t.ID] = t
}

// HasTemplate reports whether a template is registered.
func (s *Service) HasTemplate(id string) bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return slices.Contains(s.templateOrder, id)
}
