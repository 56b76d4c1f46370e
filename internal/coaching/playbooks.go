package coaching

import (
	_ "embed"

	"gopkg.in/yaml.v3"

	"github.com/rajdeepdeb909/AiAgentTracker-replit-sub004/internal/models"
)

//go:embed playbooks.yaml
var playbooksYAML []byte

type playbookEntry struct {
	Pattern                           string `yaml:"pattern"`
	models.MagikButtonRecommendation `yaml:",inline"`
}

type playbookFile struct {
	Playbooks []playbookEntry `yaml:"playbooks"`
}

var playbooksByPattern map[string][]models.MagikButtonRecommendation

func init() {
	var file playbookFile
	if err := yaml.Unmarshal(playbooksYAML, &file); err != nil {
		panic("coaching: invalid embedded playbooks.yaml: " + err.Error())
	}
	playbooksByPattern = make(map[string][]models.MagikButtonRecommendation, len(file.Playbooks))
	for _, e := range file.Playbooks {
		playbooksByPattern[e.Pattern] = append(playbooksByPattern[e.Pattern], e.MagikButtonRecommendation)
	}
}

// PlaybooksFor returns the prescriptive repair playbooks attached to a repair
// pattern. The returned slice is shared reference data; callers must not
// mutate it.
func PlaybooksFor(pattern string) []models.MagikButtonRecommendation {
	return playbooksByPattern[pattern]
}
