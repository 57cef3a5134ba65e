package render

import (
	"os"
	"path/filepath"
	"regexp"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"

	"github.com/shinji-kodama/stackup/internal/model"
)

func testProject() *model.Project {
	return &model.Project{
		Type:       model.ProjectLaravel,
		Name:       "shop",
		PHPVersion: "8.1",
		Ports:      model.Ports{PHP: 9000, MySQL: 3308, MySQLTest: 3309, Redis: 6379, Nginx: 8081},
	}
}

func testLabels() map[string]string {
	return map[string]string{"stackup.managed-by": "stackup", "stackup.project": "shop"}
}

func newTestWorkspace(t *testing.T) *Workspace {
	t.Helper()
	ws, err := NewWorkspace(t.TempDir())
	require.NoError(t, err)
	return ws
}

func TestDockerfile(t *testing.T) {
	data, err := Dockerfile(testProject())
	require.NoError(t, err)

	content := string(data)
	assert.True(t, strings.HasPrefix(content, "FROM php:8.1-fpm\n"))
	assert.Contains(t, content, "ENV PROJECT_NAME=${PROJECT_NAME}")
	assert.Contains(t, content, "docker-php-ext-install pdo_mysql mbstring exif pcntl bcmath gd")
	assert.Contains(t, content, "COPY --from=composer:latest /usr/bin/composer /usr/bin/composer")
	assert.Contains(t, content, "WORKDIR /var/www")
	assert.True(t, strings.HasSuffix(content, "USER dev\n"))
}

func TestNginxConfig(t *testing.T) {
	data, err := NginxConfig(testProject())
	require.NoError(t, err)

	content := string(data)
	assert.Contains(t, content, "fastcgi_pass app:9000;")
	assert.Contains(t, content, "try_files $uri $uri/ /index.php?$query_string;")
	assert.Contains(t, content, `add_header Cache-Control "public, no-transform";`)
}

func TestEnvSetup(t *testing.T) {
	data, err := EnvSetup(testProject())
	require.NoError(t, err)

	content := string(data)
	for _, line := range []string{
		"COMPOSE_PROJECT_NAME=shop",
		"PHP_VERSION=8.1",
		"DB_PORT=3308",
		"DB_DATABASE=shop_db",
		"DB_USERNAME=shop_user",
		"DB_TEST_PORT=3309",
		"DB_TEST_DATABASE=shop_test_db",
		"DB_TEST_USERNAME=shop_test_user",
		"REDIS_PORT=6379",
		"NGINX_PORT=8081",
		"PHP_PORT=9000",
	} {
		assert.Contains(t, content, line+"\n")
	}
}

func TestCompose(t *testing.T) {
	data, err := Compose(testProject(), testLabels())
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(string(data), "# Generated by stackup"))

	var doc composeFile
	require.NoError(t, yaml.Unmarshal(data, &doc))

	assert.Equal(t, "shop", doc.Name)
	require.Len(t, doc.Services, 5)
	assert.Equal(t, []string{"${PHP_PORT}:9000"}, doc.Services[AppService].Ports)
	assert.Equal(t, []string{"${NGINX_PORT}:80"}, doc.Services[NginxService].Ports)
	assert.Equal(t, []string{"${DB_PORT}:3306"}, doc.Services[MySQLService].Ports)
	assert.Equal(t, []string{"${DB_TEST_PORT}:3306"}, doc.Services[MySQLTestService].Ports)
	assert.Equal(t, []string{"${REDIS_PORT}:6379"}, doc.Services[RedisService].Ports)
	assert.Equal(t, DockerfilePath, doc.Services[AppService].Build.Dockerfile)
	assert.Equal(t, "${DB_TEST_DATABASE}", doc.Services[MySQLTestService].Environment["MYSQL_DATABASE"])

	for name, svc := range doc.Services {
		assert.Equal(t, testLabels(), svc.Labels, "service %s", name)
	}
}

func TestWriteAll(t *testing.T) {
	ws := newTestWorkspace(t)

	res, err := WriteAll(ws, testProject(), "docker-compose.yml", testLabels())
	require.NoError(t, err)
	assert.Equal(t, []string{DockerfilePath, NginxConfigPath, EnvSetupPath, EnvPath, "docker-compose.yml"}, res.Written)
	assert.Empty(t, res.Skipped)

	setup, err := os.ReadFile(filepath.Join(ws.Root(), EnvSetupPath))
	require.NoError(t, err)
	env, err := os.ReadFile(filepath.Join(ws.Root(), EnvPath))
	require.NoError(t, err)
	assert.Equal(t, setup, env)

	assert.FileExists(t, filepath.Join(ws.Root(), "docker", "php", "Dockerfile"))
	assert.FileExists(t, filepath.Join(ws.Root(), "docker", "nginx", "default.conf"))
}

// TestWriteAll_KeepsExistingCompose verifies a user's compose file is
// never overwritten.
func TestWriteAll_KeepsExistingCompose(t *testing.T) {
	ws := newTestWorkspace(t)
	require.NoError(t, ws.WriteFile("compose.yaml", []byte("services: {}\n")))

	res, err := WriteAll(ws, testProject(), "compose.yaml", testLabels())
	require.NoError(t, err)
	assert.Equal(t, []string{"compose.yaml"}, res.Skipped)

	data, err := ws.ReadFile("compose.yaml")
	require.NoError(t, err)
	assert.Equal(t, "services: {}\n", string(data))
}

// TestWorkspace_Confined verifies that escaping paths resolve inside the
// workspace root.
func TestWorkspace_Confined(t *testing.T) {
	ws := newTestWorkspace(t)

	path, err := ws.Path("../../etc/passwd")
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(ws.Root(), "etc", "passwd"), path)

	outside := t.TempDir()
	require.NoError(t, os.Symlink(outside, filepath.Join(ws.Root(), "link")))
	require.NoError(t, ws.WriteFile("link/file.txt", []byte("x")))

	// The symlink target is re-rooted under the workspace, so nothing is
	// written to the outside directory.
	assert.NoFileExists(t, filepath.Join(outside, "file.txt"))
}

func TestUpsertEnv(t *testing.T) {
	tests := []struct {
		name    string
		content string
		vars    []EnvVar
		want    string
	}{
		{
			name:    "replace keeps line endings",
			content: "APP_NAME=Laravel\r\nAPP_ENV=local\r\nDB_PORT=3306\r\n",
			vars:    []EnvVar{{"APP_NAME", "shop"}, {"DB_PORT", "3308"}},
			want:    "APP_NAME=shop\r\nAPP_ENV=local\r\nDB_PORT=3308\r\n",
		},
		{
			name:    "last line without newline",
			content: "A=1\nREDIS_PORT=6379",
			vars:    []EnvVar{{"REDIS_PORT", "6380"}},
			want:    "A=1\nREDIS_PORT=6380",
		},
		{
			name:    "missing key appended",
			content: "A=1",
			vars:    []EnvVar{{"APP_URL", "http://localhost:8081"}},
			want:    "A=1\nAPP_URL=http://localhost:8081\n",
		},
		{
			name:    "prefix keys untouched",
			content: "DB_PORT_EXTRA=1\nDB_PORT=3306\n",
			vars:    []EnvVar{{"DB_PORT", "3310"}},
			want:    "DB_PORT_EXTRA=1\nDB_PORT=3310\n",
		},
		{
			name:    "comments and blank lines kept",
			content: "# DB_HOST=127.0.0.1\n\nDB_HOST=127.0.0.1\n",
			vars:    []EnvVar{{"DB_HOST", "mysql"}},
			want:    "# DB_HOST=127.0.0.1\n\nDB_HOST=mysql\n",
		},
		{
			name:    "empty content",
			content: "",
			vars:    []EnvVar{{"A", "1"}, {"B", "2"}},
			want:    "A=1\nB=2\n",
		},
		{
			name:    "only first occurrence",
			content: "X=1\nX=2\n",
			vars:    []EnvVar{{"X", "9"}},
			want:    "X=9\nX=2\n",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, string(UpsertEnv([]byte(tt.content), tt.vars)))
		})
	}
}

// laravelEnv is the .env a fresh Laravel skeleton ships with.
const laravelEnv = `APP_NAME=Laravel
APP_KEY=base64:c2VjcmV0LWtleS1mb3ItdGVzdHM=
APP_URL=http://localhost

# Database
DB_CONNECTION=sqlite
DB_HOST=127.0.0.1
DB_PORT=3306
DB_DATABASE=laravel
DB_USERNAME=root
DB_PASSWORD=

REDIS_HOST=127.0.0.1
REDIS_PASSWORD=null
REDIS_PORT=6379
`

func newLaravelWorkspace(t *testing.T) *Workspace {
	t.Helper()
	ws := newTestWorkspace(t)
	_, err := WriteAll(ws, testProject(), "docker-compose.yml", testLabels())
	require.NoError(t, err)
	// The skeleton's dotfiles are moved over the .env WriteAll created.
	require.NoError(t, ws.WriteFile(EnvPath, []byte(laravelEnv)))
	require.NoError(t, ws.WriteFile(GitignorePath, []byte("/vendor\n")))
	return ws
}

func TestConfigureLaravel(t *testing.T) {
	ws := newLaravelWorkspace(t)

	require.NoError(t, ConfigureLaravel(ws, testProject()))
	// A second run must not duplicate the .gitignore entries.
	require.NoError(t, ConfigureLaravel(ws, testProject()))

	gitignore, err := ws.ReadFile(GitignorePath)
	require.NoError(t, err)
	assert.Equal(t, "/vendor\n\n# Custom entries\ndocker/\n.env.setup\n", string(gitignore))

	env, err := ReadEnv(ws, EnvPath)
	require.NoError(t, err)
	assert.Equal(t, "shop", env["APP_NAME"])
	assert.Equal(t, "base64:c2VjcmV0LWtleS1mb3ItdGVzdHM=", env["APP_KEY"])
	assert.Equal(t, "http://localhost:8081", env["APP_URL"])
	assert.Equal(t, "mysql", env["DB_CONNECTION"])
	assert.Equal(t, "mysql", env["DB_HOST"])
	assert.Equal(t, "3308", env["DB_PORT"])
	assert.Equal(t, "shop_db", env["DB_DATABASE"])
	assert.Equal(t, "shop_user", env["DB_USERNAME"])
	assert.Equal(t, "secret", env["DB_PASSWORD"])
	assert.Equal(t, "redis", env["REDIS_HOST"])
	assert.Equal(t, "6379", env["REDIS_PORT"])

	raw, err := ws.ReadFile(EnvPath)
	require.NoError(t, err)
	assert.Contains(t, string(raw), "# Database\n")
	assert.Equal(t, 1, strings.Count(string(raw), "COMPOSE_PROJECT_NAME="))
}

// TestConfigureLaravel_ComposeVarsDefined verifies docker compose can
// resolve every variable of the generated compose file from the final .env.
func TestConfigureLaravel_ComposeVarsDefined(t *testing.T) {
	ws := newLaravelWorkspace(t)
	require.NoError(t, ConfigureLaravel(ws, testProject()))

	compose, err := ws.ReadFile("docker-compose.yml")
	require.NoError(t, err)
	env, err := ReadEnv(ws, EnvPath)
	require.NoError(t, err)

	refs := regexp.MustCompile(`\$\{([A-Z0-9_]+)\}`).FindAllStringSubmatch(string(compose), -1)
	require.NotEmpty(t, refs)
	for _, ref := range refs {
		value, ok := env[ref[1]]
		assert.True(t, ok, "%s is not defined in .env", ref[1])
		assert.NotEmpty(t, value, "%s is empty in .env", ref[1])
	}
}

func TestConfigureLaravel_MissingEnvSetup(t *testing.T) {
	ws := newTestWorkspace(t)
	require.NoError(t, ws.WriteFile(EnvPath, []byte(laravelEnv)))

	err := ConfigureLaravel(ws, testProject())
	require.Error(t, err)
	assert.Contains(t, err.Error(), EnvSetupPath)
}
