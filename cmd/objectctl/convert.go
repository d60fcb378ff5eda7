package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/annel0/objectkit/internal/compat"
	"github.com/annel0/objectkit/internal/project"
	"github.com/annel0/objectkit/internal/serializer"
)

type convertOptions struct {
	from   string
	to     string
	output string
	raw    bool
}

func newConvertCommand() *cobra.Command {
	opts := &convertOptions{}
	cmd := &cobra.Command{
		Use:   "convert <in>",
		Short: "Перевести документ проекта в текущий формат",
		Long: `Читает документ в любом поддерживаемом формате, включая старые документы
с Automatism, и записывает его в текущем формате.

По умолчанию документ проходит через модель проекта. С --raw дерево
документа сохраняется целиком, переписываются только записи поведений.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runConvert(cmd, args[0], opts)
		},
	}
	cmd.Flags().StringVar(&opts.from, "from", "", "формат входа (json|xml|yaml), по умолчанию по расширению")
	cmd.Flags().StringVar(&opts.to, "to", "json", "формат выхода (json|xml|yaml)")
	cmd.Flags().StringVarP(&opts.output, "output", "o", "", "файл результата, по умолчанию stdout")
	cmd.Flags().BoolVar(&opts.raw, "raw", false, "сохранить дерево документа, обновив только поведения")
	return cmd
}

func runConvert(cmd *cobra.Command, in string, opts *convertOptions) error {
	to, err := serializer.ParseFormat(opts.to)
	if err != nil {
		return err
	}
	el, _, err := readDocument(cmd, in, opts.from)
	if err != nil {
		return err
	}

	rules := make(map[string]int)
	var data []byte
	if opts.raw {
		for _, item := range project.ObjectElements(el) {
			rules[compat.Upgrade(item)]++
		}
		data, err = serializer.Encode(el, to)
	} else {
		for _, item := range project.ObjectElements(el) {
			_, rule := compat.TranslateWithRule(item)
			rules[rule]++
		}
		p := project.New("", defaultPlatform())
		p.UnserializeFrom(el)
		data, err = p.Encode(to)
	}
	if err != nil {
		return err
	}

	if opts.output == "" {
		_, err = cmd.OutOrStdout().Write(data)
	} else {
		err = os.WriteFile(opts.output, data, 0644)
	}
	if err != nil {
		return err
	}

	fmt.Fprintf(cmd.ErrOrStderr(), "объектов: %d, старый формат: %d\n",
		rules[compat.RuleLegacyAutomatism]+rules[compat.RuleBehaviorsArray], rules[compat.RuleLegacyAutomatism])
	return nil
}
