package main

import (
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"github.com/annel0/objectkit/internal/behavior/implementations"
	"github.com/annel0/objectkit/internal/platform"
	"github.com/annel0/objectkit/internal/serializer"
)

func newRootCommand() *cobra.Command {
	root := &cobra.Command{
		Use:           "objectctl",
		Short:         "Утилиты для документов проектов objectkit",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.AddCommand(
		newConvertCommand(),
		newInspectCommand(),
		newTypesCommand(),
		newHistoryCommand(),
	)
	return root
}

// defaultPlatform платформа со встроенными поведениями
func defaultPlatform() *platform.Platform {
	p := platform.New("objectctl")
	implementations.RegisterDefaults(p)
	return p
}

// readDocument читает файл (или stdin для "-") и определяет формат.
// Явный формат важнее расширения файла.
func readDocument(cmd *cobra.Command, path, format string) (*serializer.Element, serializer.Format, error) {
	f := serializer.FormatFromPath(path)
	if format != "" {
		var err error
		if f, err = serializer.ParseFormat(format); err != nil {
			return nil, "", err
		}
	}

	var (
		data []byte
		err  error
	)
	if path == "-" {
		data, err = io.ReadAll(cmd.InOrStdin())
	} else {
		data, err = os.ReadFile(path)
	}
	if err != nil {
		return nil, "", fmt.Errorf("чтение %s: %w", path, err)
	}

	el, err := serializer.Decode(data, f)
	if err != nil {
		return nil, "", fmt.Errorf("разбор %s: %w", path, err)
	}
	return el, f, nil
}

func newTypesCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "types",
		Short: "Список зарегистрированных типов поведений",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			for _, t := range defaultPlatform().BehaviorTypes() {
				fmt.Fprintln(cmd.OutOrStdout(), t)
			}
			return nil
		},
	}
}
