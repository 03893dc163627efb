package catalog

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sort"

	"github.com/bmatcuk/doublestar/v4"
	"gopkg.in/yaml.v3"

	"originate-hq/meridian/pkg/criteria"
	"originate-hq/meridian/pkg/loan"
	"originate-hq/meridian/pkg/rules"
)

// sectionDoc is the YAML schema of sections/*.yaml.
type sectionDoc struct {
	ID          string `yaml:"id"`
	Name        string `yaml:"name"`
	Sequence    *int   `yaml:"sequence"`
	Description string `yaml:"description"`
}

// questionDoc is the YAML schema of questions/**/*.yaml.
type questionDoc struct {
	ID              string            `yaml:"id"`
	Name            string            `yaml:"name"`
	Section         string            `yaml:"section"`
	Ordinal         *int              `yaml:"ordinal"`
	Level           string            `yaml:"level"`
	Instructions    string            `yaml:"instructions"`
	Type            string            `yaml:"type"`
	FormFields      []formFieldDoc    `yaml:"form_fields"`
	Criteria        string            `yaml:"criteria"`
	Flexibility     string            `yaml:"flexibility"`
	Options         []string          `yaml:"options"`
	CanCombineWith  []string          `yaml:"can_combine_with"`
	ExtractionHints map[string]string `yaml:"extraction_hints"`
}

type formFieldDoc struct {
	Order       int    `yaml:"order"`
	Label       string `yaml:"label"`
	AccessField string `yaml:"access_field"`
	Prepopulate bool   `yaml:"prepopulate"`
}

// Load reads the catalog tree rooted at root, compiles every question's
// criteria into engine, and returns the immutable registry. Every error is
// fatal and carries the offending file path.
func Load(root string, engine *rules.Engine, logger *slog.Logger) (*Registry, error) {
	if logger == nil {
		logger = slog.Default()
	}

	sections, err := loadSections(filepath.Join(root, "sections"))
	if err != nil {
		return nil, err
	}

	questions, err := loadQuestions(filepath.Join(root, "questions"), sections)
	if err != nil {
		return nil, err
	}

	// Install compiled tables. Compile errors were already rejected during
	// question loading, so a failure here is an engine-level problem and is
	// just as fatal.
	for _, q := range questions {
		table, err := criteria.Compile(q.question.Criteria)
		if err != nil {
			return nil, compileErrorAt(err, q.path)
		}
		if err := engine.Compile(q.question.RuleID, table); err != nil {
			return nil, fmt.Errorf("%s: install rule: %w", q.path, err)
		}
	}

	registry := newRegistry(sections, questions)

	logger.Info("catalog loaded",
		"root", root,
		"sections", len(registry.sections),
		"questions", len(registry.byID),
		"rules", engine.RuleCount(),
	)

	return registry, nil
}

type loadedQuestion struct {
	question *Question
	path     string
}

func loadSections(dir string) (map[string]*Section, error) {
	paths, err := filepath.Glob(filepath.Join(dir, "*.yaml"))
	if err != nil {
		return nil, fmt.Errorf("scan sections in %s: %w", dir, err)
	}
	if len(paths) == 0 {
		return nil, fmt.Errorf("no section files found under %s", dir)
	}
	sort.Strings(paths)

	sections := make(map[string]*Section, len(paths))
	bySequence := make(map[int]string, len(paths))
	for _, path := range paths {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("read %s: %w", path, err)
		}
		var doc sectionDoc
		if err := yaml.Unmarshal(data, &doc); err != nil {
			return nil, fmt.Errorf("parse %s: %w", path, err)
		}
		if doc.ID == "" {
			return nil, fmt.Errorf("%s: section id is required", path)
		}
		if doc.Name == "" {
			return nil, fmt.Errorf("%s: section name is required", path)
		}
		if doc.Sequence == nil {
			return nil, fmt.Errorf("%s: section sequence is required", path)
		}
		if _, dup := sections[doc.ID]; dup {
			return nil, fmt.Errorf("%s: duplicate section id %q", path, doc.ID)
		}
		if other, dup := bySequence[*doc.Sequence]; dup {
			return nil, fmt.Errorf("%s: section sequence %d already used by %q; ties are forbidden", path, *doc.Sequence, other)
		}
		bySequence[*doc.Sequence] = doc.ID
		sections[doc.ID] = &Section{
			ID:          doc.ID,
			Name:        doc.Name,
			Sequence:    *doc.Sequence,
			Description: doc.Description,
		}
	}
	return sections, nil
}

func loadQuestions(dir string, sections map[string]*Section) ([]loadedQuestion, error) {
	paths, err := doublestar.FilepathGlob(filepath.Join(dir, "**", "*.yaml"))
	if err != nil {
		return nil, fmt.Errorf("scan questions in %s: %w", dir, err)
	}
	if len(paths) == 0 {
		return nil, fmt.Errorf("no question files found under %s", dir)
	}
	sort.Strings(paths)

	out := make([]loadedQuestion, 0, len(paths))
	byID := make(map[string]string, len(paths))
	ordinals := make(map[string]map[int]string)
	for _, path := range paths {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("read %s: %w", path, err)
		}
		var doc questionDoc
		if err := yaml.Unmarshal(data, &doc); err != nil {
			return nil, fmt.Errorf("parse %s: %w", path, err)
		}

		q, err := buildQuestion(&doc, sections)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", path, err)
		}

		if other, dup := byID[q.ID]; dup {
			return nil, fmt.Errorf("%s: duplicate question id %q (also in %s)", path, q.ID, other)
		}
		byID[q.ID] = path

		if ordinals[q.SectionID] == nil {
			ordinals[q.SectionID] = make(map[int]string)
		}
		if other, dup := ordinals[q.SectionID][q.Ordinal]; dup {
			return nil, fmt.Errorf("%s: ordinal %d already used in section %q by %q", path, q.Ordinal, q.SectionID, other)
		}
		ordinals[q.SectionID][q.Ordinal] = q.ID

		// Reject bad criteria here so the error carries the file path even
		// though installation happens later.
		if _, err := criteria.Compile(doc.Criteria); err != nil {
			return nil, compileErrorAt(err, path)
		}

		out = append(out, loadedQuestion{question: q, path: path})
	}
	return out, nil
}

func buildQuestion(doc *questionDoc, sections map[string]*Section) (*Question, error) {
	if doc.ID == "" {
		return nil, fmt.Errorf("question id is required")
	}
	if doc.Section == "" {
		return nil, fmt.Errorf("question %q: section is required", doc.ID)
	}
	if _, ok := sections[doc.Section]; !ok {
		return nil, fmt.Errorf("question %q: unknown section %q", doc.ID, doc.Section)
	}
	if doc.Ordinal == nil {
		return nil, fmt.Errorf("question %q: ordinal is required", doc.ID)
	}
	if doc.Instructions == "" {
		return nil, fmt.Errorf("question %q: instructions are required", doc.ID)
	}
	if len(doc.FormFields) == 0 {
		return nil, fmt.Errorf("question %q: at least one form field is required", doc.ID)
	}

	level, err := loan.ParseEntityLevel(doc.Level)
	if err != nil {
		return nil, fmt.Errorf("question %q: %w", doc.ID, err)
	}
	flexibility, err := ParseFlexibility(doc.Flexibility)
	if err != nil {
		return nil, fmt.Errorf("question %q: %w", doc.ID, err)
	}

	fields := make([]FormField, 0, len(doc.FormFields))
	labels := make(map[string]struct{}, len(doc.FormFields))
	for i, ff := range doc.FormFields {
		if ff.AccessField == "" {
			return nil, fmt.Errorf("question %q: form field %d has no access_field", doc.ID, i)
		}
		if len(doc.FormFields) > 1 && ff.Label == "" {
			return nil, fmt.Errorf("question %q: multi-field questions require a label on every form field", doc.ID)
		}
		if ff.Label != "" {
			if _, dup := labels[ff.Label]; dup {
				return nil, fmt.Errorf("question %q: duplicate form field label %q", doc.ID, ff.Label)
			}
			labels[ff.Label] = struct{}{}
		}
		fields = append(fields, FormField{
			Order:       ff.Order,
			Label:       ff.Label,
			AccessField: ff.AccessField,
			Prepopulate: ff.Prepopulate,
		})
	}
	sort.SliceStable(fields, func(i, j int) bool { return fields[i].Order < fields[j].Order })

	combineSet := make(map[string]struct{}, len(doc.CanCombineWith))
	for _, id := range doc.CanCombineWith {
		combineSet[id] = struct{}{}
	}

	return &Question{
		ID:               doc.ID,
		Name:             doc.Name,
		SectionID:        doc.Section,
		Ordinal:          *doc.Ordinal,
		Level:            level,
		Instructions:     doc.Instructions,
		InputKind:        doc.Type,
		FormFields:       fields,
		Criteria:         doc.Criteria,
		Flexibility:      flexibility,
		Options:          doc.Options,
		CanCombineWith:   doc.CanCombineWith,
		ExtractionHints:  doc.ExtractionHints,
		RuleID:           RuleIDFor(doc.ID),
		AlwaysApplicable: isBlankCriteria(doc.Criteria),
		canCombineSet:    combineSet,
	}, nil
}

func isBlankCriteria(s string) bool {
	for _, r := range s {
		if r != ' ' && r != '\t' && r != '\n' && r != '\r' {
			return false
		}
	}
	return true
}

func compileErrorAt(err error, path string) error {
	if ce, ok := err.(*criteria.CompileError); ok {
		return ce.WithPath(path)
	}
	return fmt.Errorf("%s: %w", path, err)
}
