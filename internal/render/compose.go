package render

import (
	"fmt"

	"gopkg.in/yaml.v3"

	"github.com/shinji-kodama/stackup/internal/model"
)

// Compose service names. The installer and readiness wait address the
// app container by AppService.
const (
	AppService       = "app"
	NginxService     = "nginx"
	MySQLService     = "mysql"
	MySQLTestService = "mysql-test"
	RedisService     = "redis"
)

// composeFile is the generated docker-compose.yml document.
//
// Host ports are written as ${VAR} references resolved from .env, so
// editing the confirmed ports later does not require regenerating the
// compose file.
type composeFile struct {
	// Name sets the Compose project name, which prefixes container,
	// network and volume names.
	Name     string                    `yaml:"name"`
	Services map[string]composeService `yaml:"services"`
	Volumes  map[string]struct{}       `yaml:"volumes,omitempty"`
}

type composeBuild struct {
	Context    string            `yaml:"context"`
	Dockerfile string            `yaml:"dockerfile"`
	Args       map[string]string `yaml:"args,omitempty"`
}

type composeService struct {
	Build       *composeBuild     `yaml:"build,omitempty"`
	Image       string            `yaml:"image,omitempty"`
	Restart     string            `yaml:"restart,omitempty"`
	WorkingDir  string            `yaml:"working_dir,omitempty"`
	Environment map[string]string `yaml:"environment,omitempty"`
	Ports       []string          `yaml:"ports,omitempty"`
	Volumes     []string          `yaml:"volumes,omitempty"`
	DependsOn   []string          `yaml:"depends_on,omitempty"`
	Labels      map[string]string `yaml:"labels,omitempty"`
}

func mysqlService(portVar, dbVar, userVar, passVar, rootPassVar, volume string) composeService {
	return composeService{
		Image:   "mysql:8.0",
		Restart: "unless-stopped",
		Environment: map[string]string{
			"MYSQL_DATABASE":      "${" + dbVar + "}",
			"MYSQL_USER":          "${" + userVar + "}",
			"MYSQL_PASSWORD":      "${" + passVar + "}",
			"MYSQL_ROOT_PASSWORD": "${" + rootPassVar + "}",
		},
		Ports:   []string{"${" + portVar + "}:3306"},
		Volumes: []string{volume + ":/var/lib/mysql"},
	}
}

// Compose builds the docker-compose.yml document for project. Every
// service receives a copy of labels.
func Compose(project *model.Project, labels map[string]string) ([]byte, error) {
	services := map[string]composeService{
		AppService: {
			Build: &composeBuild{
				Context:    ".",
				Dockerfile: DockerfilePath,
				Args:       map[string]string{"PROJECT_NAME": "${COMPOSE_PROJECT_NAME}"},
			},
			Restart:    "unless-stopped",
			WorkingDir: "/var/www",
			Ports:      []string{"${PHP_PORT}:9000"},
			Volumes:    []string{"./:/var/www"},
			DependsOn:  []string{MySQLService, RedisService},
		},
		NginxService: {
			Image:   "nginx:alpine",
			Restart: "unless-stopped",
			Ports:   []string{"${NGINX_PORT}:80"},
			Volumes: []string{
				"./:/var/www",
				"./" + NginxConfigPath + ":/etc/nginx/conf.d/default.conf",
			},
			DependsOn: []string{AppService},
		},
		MySQLService: mysqlService("DB_PORT", "DB_DATABASE", "DB_USERNAME", "DB_PASSWORD", "DB_ROOT_PASSWORD", "mysql-data"),
		MySQLTestService: mysqlService("DB_TEST_PORT", "DB_TEST_DATABASE", "DB_TEST_USERNAME", "DB_TEST_PASSWORD",
			"DB_TEST_ROOT_PASSWORD", "mysql-test-data"),
		RedisService: {
			Image:   "redis:alpine",
			Restart: "unless-stopped",
			Ports:   []string{"${REDIS_PORT}:6379"},
		},
	}

	// Port labels carry the ports confirmed at init time; the published
	// ports follow whatever .env holds when compose runs.
	for name, svc := range services {
		svc.Labels = make(map[string]string, len(labels))
		for k, v := range labels {
			svc.Labels[k] = v
		}
		services[name] = svc
	}

	doc := composeFile{
		Name:     project.Name,
		Services: services,
		Volumes: map[string]struct{}{
			"mysql-data":      {},
			"mysql-test-data": {},
		},
	}

	// yaml.v3 sorts map keys, which keeps the output deterministic.
	data, err := yaml.Marshal(&doc)
	if err != nil {
		return nil, fmt.Errorf("failed to serialize docker-compose.yml: %w", err)
	}

	header := fmt.Sprintf("# Generated by stackup for project %q\n# Host ports are read from .env\n", project.Name)
	return append([]byte(header), data...), nil
}
