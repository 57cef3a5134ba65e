package render

import (
	"bytes"
	"embed"
	"fmt"
	"text/template"

	"github.com/shinji-kodama/stackup/internal/model"
)

// Artifact paths relative to the project directory.
const (
	DockerfilePath  = "docker/php/Dockerfile"
	NginxConfigPath = "docker/nginx/default.conf"
	EnvSetupPath    = ".env.setup"
	EnvPath         = ".env"
	GitignorePath   = ".gitignore"
)

//go:embed templates/*.tmpl
var templateFS embed.FS

var templates = template.Must(template.ParseFS(templateFS, "templates/*.tmpl"))

func execute(name string, project *model.Project) ([]byte, error) {
	var buf bytes.Buffer
	if err := templates.ExecuteTemplate(&buf, name, project); err != nil {
		return nil, fmt.Errorf("failed to render %s: %w", name, err)
	}
	return buf.Bytes(), nil
}

// Dockerfile renders the app image definition.
func Dockerfile(project *model.Project) ([]byte, error) {
	return execute("Dockerfile.tmpl", project)
}

// NginxConfig renders the nginx site configuration.
func NginxConfig(project *model.Project) ([]byte, error) {
	return execute("nginx.conf.tmpl", project)
}

// EnvSetup renders the .env.setup document with the confirmed ports and
// derived database settings.
func EnvSetup(project *model.Project) ([]byte, error) {
	return execute("env.setup.tmpl", project)
}

// Result lists what WriteAll did.
type Result struct {
	Written []string `json:"written"`
	Skipped []string `json:"skipped,omitempty"`
}

// WriteAll renders every artifact into ws. The compose file is generated
// only when composeFile does not exist yet; labels are applied to every
// generated service.
func WriteAll(ws *Workspace, project *model.Project, composeFile string, labels map[string]string) (*Result, error) {
	res := &Result{}

	steps := []struct {
		path   string
		render func(*model.Project) ([]byte, error)
	}{
		{DockerfilePath, Dockerfile},
		{NginxConfigPath, NginxConfig},
		{EnvSetupPath, EnvSetup},
	}
	for _, s := range steps {
		data, err := s.render(project)
		if err != nil {
			return res, err
		}
		if err := ws.WriteFile(s.path, data); err != nil {
			return res, err
		}
		res.Written = append(res.Written, s.path)
	}

	// .env starts as a copy of .env.setup.
	if err := ws.CopyFile(EnvSetupPath, EnvPath); err != nil {
		return res, err
	}
	res.Written = append(res.Written, EnvPath)

	if ws.Exists(composeFile) {
		res.Skipped = append(res.Skipped, composeFile)
		return res, nil
	}
	data, err := Compose(project, labels)
	if err != nil {
		return res, err
	}
	if err := ws.WriteFile(composeFile, data); err != nil {
		return res, err
	}
	res.Written = append(res.Written, composeFile)
	return res, nil
}
