package main

import (
	"os"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/ivlev/slides2video/internal/engine"
)

// planView is the dry-run document printed by the plan command.
type planView struct {
	engine.Plan `yaml:",inline"`
	VideoGraph   string `yaml:"video_graph"`
	AudioGraph   string `yaml:"audio_graph,omitempty"`
}

func newPlanView(plan *engine.Plan) planView {
	v := planView{Plan: *plan, VideoGraph: plan.Transitions.FilterGraph()}
	if plan.Audio != nil {
		v.AudioGraph = plan.Audio.FilterGraph(len(plan.Inputs()), "aout")
	}
	return v
}

func newPlanCmd() *cobra.Command {
	var flags runFlags
	cmd := &cobra.Command{
		Use:   "plan",
		Short: "Print the compiled timeline without encoding",
		RunE: func(cmd *cobra.Command, _ []string) error {
			p, err := flags.project(cmd)
			if err != nil {
				return err
			}
			plan, err := p.Plan(cmd.Context())
			if err != nil {
				return err
			}

			enc := yaml.NewEncoder(os.Stdout)
			enc.SetIndent(2)
			defer enc.Close()
			return enc.Encode(newPlanView(plan))
		},
	}
	flags.register(cmd)
	return cmd
}
