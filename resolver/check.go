package resolver

import (
	"path/filepath"
	"strings"
)

// CheckResult reports where a literal asset filename was found.
type CheckResult struct {
	Found      bool   `json:"exists"`
	Filename   string `json:"file"`
	Path       string `json:"path,omitempty"`
	Folder     string `json:"folder_type,omitempty"`
	PublicPath string `json:"url,omitempty"`
}

// Check probes one literal filename under every category folder of every base
// directory and reports the first hit. Category order follows configuration,
// not any descriptor.
func (r *Resolver) Check(filename string) CheckResult {
	result := CheckResult{Filename: filename}
	if !safeFilename(filename) {
		return result
	}

	for _, base := range r.cfg.BaseDirs {
		for _, c := range r.cfg.Categories {
			folders := []string{c.Folder}
			for _, suffix := range r.cfg.AliasSuffixes {
				folders = append(folders, c.Folder+suffix)
			}
			for _, folder := range folders {
				path := filepath.Join(base, folder, filename)
				if !r.exists(path) {
					continue
				}
				result.Found = true
				result.Path = path
				result.Folder = c.Folder
				result.PublicPath = c.Prefix() + "/" + filename
				return result
			}
		}
	}
	return result
}

// safeFilename rejects names that could escape a category folder.
func safeFilename(name string) bool {
	if name == "" || name == "." || name == ".." {
		return false
	}
	if strings.ContainsAny(name, `/\`) || strings.Contains(name, "..") {
		return false
	}
	return filepath.Base(name) == name
}
