package engine

import (
	"fmt"

	"github.com/tghanchidnx/Databridge-AI-sub003/internal/pipeline"
	"github.com/tghanchidnx/Databridge-AI-sub003/pkg/mart"
)

// MartInfo summarizes one mart definition for listings.
type MartInfo struct {
	Mart       string   `json:"mart"`
	Path       string   `json:"path"`
	ReportType string   `json:"report_type,omitempty"`
	Patterns   int      `json:"patterns"`
	Mappings   int      `json:"mappings"`
	Formulas   int      `json:"formulas"`
	Objects    []string `json:"objects"`
}

// List summarizes every mart definition in the configs directory.
func (e *Engine) List() ([]MartInfo, error) {
	files, err := e.loadMarts(nil)
	if err != nil {
		return nil, err
	}

	infos := make([]MartInfo, 0, len(files))
	for _, f := range files {
		info := MartInfo{
			Mart:       f.Config.Name,
			Path:       f.Path,
			ReportType: f.Config.ReportType,
			Patterns:   len(f.Config.JoinPatterns),
			Mappings:   len(f.Config.DynamicColumnMap),
			Formulas:   len(f.Formulas),
		}
		for _, l := range mart.Layers() {
			info.Objects = append(info.Objects, pipeline.ObjectName(l, f.Config.Name))
		}
		infos = append(infos, info)
	}
	return infos, nil
}

// MartExport pairs a mart with its interchange-form YAML.
type MartExport struct {
	Mart string `json:"mart"`
	YAML string `json:"yaml"`
}

// Export renders the selected marts' configurations in the stable
// interchange form.
func (e *Engine) Export(names []string) ([]MartExport, error) {
	files, err := e.loadMarts(names)
	if err != nil {
		return nil, err
	}

	out := make([]MartExport, 0, len(files))
	for _, f := range files {
		data, err := f.Config.ExportYAML()
		if err != nil {
			return nil, fmt.Errorf("failed to export %s: %w", f.Config.Name, err)
		}
		out = append(out, MartExport{Mart: f.Config.Name, YAML: string(data)})
	}
	return out, nil
}
