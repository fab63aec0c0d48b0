package infrastructure_test

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"gopkg.in/yaml.v3"
)

func readFixture(t *testing.T, relPath string) string {
	t.Helper()
	root, err := projectRoot()
	if err != nil {
		t.Fatalf("locate project root failed: %v", err)
	}
	contents, err := os.ReadFile(filepath.Join(root, relPath))
	if err != nil {
		t.Fatalf("read %s failed: %v", relPath, err)
	}
	return string(contents)
}

func projectRoot() (string, error) {
	dir, err := os.Getwd()
	if err != nil {
		return "", err
	}
	for {
		if _, err := os.Stat(filepath.Join(dir, "go.mod")); err == nil {
			return dir, nil
		}
		parent := filepath.Dir(dir)
		if parent == dir {
			return "", os.ErrNotExist
		}
		dir = parent
	}
}

func assertContains(t *testing.T, contents, needle, file string) {
	t.Helper()
	if !strings.Contains(contents, needle) {
		t.Fatalf("%s missing %q", file, needle)
	}
}

func parseYAML(t *testing.T, relPath string) *yaml.Node {
	t.Helper()
	contents := readFixture(t, relPath)
	var doc yaml.Node
	if err := yaml.Unmarshal([]byte(contents), &doc); err != nil {
		t.Fatalf("unmarshal %s failed: %v", relPath, err)
	}
	if len(doc.Content) == 0 {
		t.Fatalf("%s has empty yaml document", relPath)
	}
	return doc.Content[0]
}

func mappingValue(t *testing.T, node *yaml.Node, key string) *yaml.Node {
	t.Helper()
	if node == nil || node.Kind != yaml.MappingNode {
		t.Fatalf("expected mapping node while reading key %q", key)
	}
	for i := 0; i < len(node.Content)-1; i += 2 {
		k := node.Content[i]
		v := node.Content[i+1]
		if k.Value == key {
			return v
		}
	}
	t.Fatalf("missing key %q", key)
	return nil
}

const serverlessPath = "infrastructure/serverless.yml"

func TestServerlessDeclaresServiceAndTracing(t *testing.T) {
	contents := readFixture(t, serverlessPath)

	assertContains(t, contents, "service: elearn-backoffice", serverlessPath)
	assertContains(t, contents, "TABLE_NAME: ${self:custom.tableName}", serverlessPath)
	assertContains(t, contents, "lambda: true", serverlessPath)
}

func TestAccessTableUsesCompositeKey(t *testing.T) {
	root := parseYAML(t, serverlessPath)
	table := mappingValue(t, mappingValue(t, mappingValue(t, root, "resources"), "Resources"), "AccessTable")
	properties := mappingValue(t, table, "Properties")

	billing := mappingValue(t, properties, "BillingMode")
	if billing.Value != "PAY_PER_REQUEST" {
		t.Fatalf("expected on-demand billing, got %q", billing.Value)
	}

	keySchema := mappingValue(t, properties, "KeySchema")
	if keySchema.Kind != yaml.SequenceNode || len(keySchema.Content) != 2 {
		t.Fatalf("expected two key schema entries")
	}
	hash := mappingValue(t, keySchema.Content[0], "AttributeName")
	rangeKey := mappingValue(t, keySchema.Content[1], "AttributeName")
	if hash.Value != "PK" || rangeKey.Value != "SK" {
		t.Fatalf("expected PK/SK key schema, got %s/%s", hash.Value, rangeKey.Value)
	}
}

func TestFunctionEnvironmentWiresCognito(t *testing.T) {
	root := parseYAML(t, serverlessPath)
	env := mappingValue(t, mappingValue(t, root, "provider"), "environment")

	authMode := mappingValue(t, env, "AUTH_MODE")
	if authMode.Value != "cognito" {
		t.Fatalf("expected cognito auth mode, got %q", authMode.Value)
	}
	mappingValue(t, env, "COGNITO_USER_POOL_ID")
}
