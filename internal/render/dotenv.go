package render

import (
	"bytes"
	"fmt"
	"sort"
	"strconv"
	"strings"

	"github.com/joho/godotenv"

	"github.com/shinji-kodama/stackup/internal/model"
)

// EnvVar is one KEY=value assignment.
type EnvVar struct {
	Key   string
	Value string
}

// LaravelEnv returns the application keys written into the Laravel .env.
func LaravelEnv(project *model.Project) []EnvVar {
	return []EnvVar{
		{"APP_NAME", project.Name},
		{"APP_URL", project.AppURL()},
		{"DB_PORT", strconv.Itoa(project.Ports.MySQL)},
		{"DB_DATABASE", project.DatabaseName()},
		{"DB_USERNAME", project.DatabaseUser()},
		{"REDIS_PORT", strconv.Itoa(project.Ports.Redis)},
	}
}

// ReadEnv parses the dotenv file rel of ws.
func ReadEnv(ws *Workspace, rel string) (map[string]string, error) {
	data, err := ws.ReadFile(rel)
	if err != nil {
		return nil, fmt.Errorf("failed to read %s: %w", rel, err)
	}
	env, err := godotenv.Parse(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("failed to parse %s: %w", rel, err)
	}
	return env, nil
}

// MergeEnv returns the LaravelEnv keys followed by every other key of
// setup, sorted. LaravelEnv wins on duplicates.
func MergeEnv(project *model.Project, setup map[string]string) []EnvVar {
	vars := LaravelEnv(project)
	seen := make(map[string]bool, len(vars))
	for _, v := range vars {
		seen[v.Key] = true
	}

	rest := make([]string, 0, len(setup))
	for k := range setup {
		if !seen[k] {
			rest = append(rest, k)
		}
	}
	sort.Strings(rest)
	for _, k := range rest {
		vars = append(vars, EnvVar{Key: k, Value: setup[k]})
	}
	return vars
}

// UpsertEnv replaces the first KEY= line of every var in content, keeping
// its line ending, and appends vars that have no line yet. Comments, blank
// lines and unrelated keys are left as they are.
func UpsertEnv(content []byte, vars []EnvVar) []byte {
	pending := make(map[string]string, len(vars))
	for _, v := range vars {
		pending[v.Key] = v.Value
	}

	var buf bytes.Buffer
	for _, line := range strings.SplitAfter(string(content), "\n") {
		body := strings.TrimRight(line, "\r\n")
		key, _, ok := strings.Cut(body, "=")
		key = strings.TrimSpace(strings.TrimPrefix(strings.TrimSpace(key), "export "))

		value, wanted := pending[key]
		if !ok || !wanted {
			buf.WriteString(line)
			continue
		}
		buf.WriteString(key + "=" + value)
		buf.WriteString(line[len(body):])
		delete(pending, key)
	}

	if len(pending) == 0 {
		return buf.Bytes()
	}
	if buf.Len() > 0 && !bytes.HasSuffix(buf.Bytes(), []byte("\n")) {
		buf.WriteByte('\n')
	}
	for _, v := range vars {
		if _, missing := pending[v.Key]; missing {
			fmt.Fprintf(&buf, "%s=%s\n", v.Key, v.Value)
		}
	}
	return buf.Bytes()
}

// gitignoreEntries is appended to the Laravel .gitignore.
const gitignoreEntries = "\n# Custom entries\ndocker/\n.env.setup\n"

// AppendGitignore adds the stackup entries to .gitignore once.
func AppendGitignore(ws *Workspace) error {
	existing, err := ws.ReadFile(GitignorePath)
	if err == nil && bytes.Contains(existing, []byte("# Custom entries\ndocker/\n")) {
		return nil
	}
	return ws.AppendFile(GitignorePath, []byte(gitignoreEntries))
}

// ConfigureLaravel applies the post-install edits to a Laravel project:
// .gitignore entries, and every .env.setup key plus LaravelEnv merged into
// the .env Laravel shipped. Keys only Laravel knows (APP_KEY) are kept;
// its DB_* and REDIS_* defaults are replaced, so docker compose and the app
// both see the provisioned services.
func ConfigureLaravel(ws *Workspace, project *model.Project) error {
	if err := AppendGitignore(ws); err != nil {
		return err
	}

	setup, err := ReadEnv(ws, EnvSetupPath)
	if err != nil {
		return err
	}

	// A missing .env is created from the merged keys alone.
	content, _ := ws.ReadFile(EnvPath)
	return ws.WriteFile(EnvPath, UpsertEnv(content, MergeEnv(project, setup)))
}
