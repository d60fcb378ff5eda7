package main

import (
	"fmt"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/annel0/objectkit/internal/compat"
	"github.com/annel0/objectkit/internal/project"
)

func newInspectCommand() *cobra.Command {
	var from string
	cmd := &cobra.Command{
		Use:   "inspect <file>",
		Short: "Показать объекты и поведения документа",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			el, format, err := readDocument(cmd, args[0], from)
			if err != nil {
				return err
			}

			// Правило чтения определяется до разбора в модель
			legacy := make(map[string]bool)
			for _, item := range project.ObjectElements(el) {
				legacy[item.GetStringAttribute("name", "", "nom")] = compat.IsLegacy(item)
			}

			p := project.New("", defaultPlatform())
			p.UnserializeFrom(el)

			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "проект %q (%s), объектов: %d\n", p.Name(), format, p.ObjectsCount())

			tw := tabwriter.NewWriter(out, 0, 4, 2, ' ', 0)
			fmt.Fprintln(tw, "OBJECT\tBEHAVIOR\tTYPE\tKNOWN")
			for _, name := range p.ObjectNames() {
				obj := p.Object(name)
				label := name
				if legacy[name] {
					label += " (automatism)"
				}
				names := obj.AllBehaviorNames()
				if len(names) == 0 {
					fmt.Fprintf(tw, "%s\t-\t-\t-\n", label)
					continue
				}
				for _, b := range names {
					typeName := obj.Behavior(b).TypeName()
					fmt.Fprintf(tw, "%s\t%s\t%s\t%t\n", label, b, typeName, p.Platform().HasBehavior(typeName))
				}
			}
			return tw.Flush()
		},
	}
	cmd.Flags().StringVar(&from, "from", "", "формат входа (json|xml|yaml), по умолчанию по расширению")
	return cmd
}
