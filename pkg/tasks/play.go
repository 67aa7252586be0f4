package tasks

import (
	"fmt"

	"gopkg.in/yaml.v3"

	"github.com/braunma/netans-reconciler/internal/constants"
)

// RoleRef points a play task at one task file of the automation role
type RoleRef struct {
	Name      string `yaml:"name" json:"name"`
	TasksFrom string `yaml:"tasks_from" json:"tasks_from"`
}

// PlayTask is one entry of a play's task list
type PlayTask struct {
	Name       string                 `yaml:"name" json:"name"`
	ImportRole RoleRef                `yaml:"import_role" json:"import_role"`
	Vars       map[string]interface{} `yaml:"vars" json:"vars"`
}

// Play is the wire form handed to the automation engine for one host group
type Play struct {
	Name        string     `yaml:"name" json:"name"`
	Hosts       string     `yaml:"hosts" json:"hosts"`
	GatherFacts string     `yaml:"gather_facts" json:"gather_facts"`
	Tasks       []PlayTask `yaml:"tasks" json:"tasks"`
}

// Render converts tasks into plays, one per target host in first-seen order
func Render(role string, ts ...Task) []Play {
	if role == "" {
		role = constants.DefaultRoleName
	}

	var plays []Play
	index := make(map[string]int)

	for _, t := range ts {
		i, ok := index[t.TargetHost]
		if !ok {
			plays = append(plays, Play{
				Name:        fmt.Sprintf("%s: %s", constants.PlaybookName, t.TargetHost),
				Hosts:       t.TargetHost,
				GatherFacts: constants.GatherFactsNever,
			})
			i = len(plays) - 1
			index[t.TargetHost] = i
		}

		plays[i].Tasks = append(plays[i].Tasks, PlayTask{
			Name: constants.TaskNamePrefix + t.Kind.String(),
			ImportRole: RoleRef{
				Name:      role,
				TasksFrom: t.Kind.String(),
			},
			Vars: t.Vars.Fields(),
		})
	}

	return plays
}

// MarshalPlaybook encodes plays as a playbook YAML document
func MarshalPlaybook(plays []Play) ([]byte, error) {
	data, err := yaml.Marshal(plays)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal playbook: %w", err)
	}
	return data, nil
}
