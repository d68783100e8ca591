package main

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"
	"github.com/spf13/cobra"

	"github.com/jmylchreest/creak/internal/config"
	"github.com/jmylchreest/creak/internal/style"
)

var stylesOpts struct {
	show   string
	format string
	save   string
}

var stylesCmd = &cobra.Command{
	Use:   "styles",
	Short: "List available styles",
	Long: `List the bundled styles and the style files in ~/.config/creak.
A user file with the same name as a bundled style replaces it.

Examples:
  creak styles
  creak styles --show minimal
  creak styles --show catppuccin --format yaml
  creak styles --show minimal --save mine`,
	Args: cobra.NoArgs,
	RunE: runStyles,
}

func init() {
	rootCmd.AddCommand(stylesCmd)

	stylesCmd.Flags().StringVar(&stylesOpts.show, "show", "",
		"Print the resolved configuration of a style")
	stylesCmd.Flags().StringVar(&stylesOpts.format, "format", "toml",
		"Format for --show (toml, yaml)")
	stylesCmd.Flags().StringVar(&stylesOpts.save, "save", "",
		"Write the --show style to ~/.config/creak/<name> instead of printing it")
}

func runStyles(cmd *cobra.Command, args []string) error {
	if cmd.Flags().Changed("show") {
		return showStyle(stylesOpts.show)
	}

	infos, err := style.List()
	if err != nil {
		return err
	}
	rows := make([][]string, 0, len(infos))
	for _, info := range infos {
		path := info.Path
		if path == "" {
			path = "-"
		}
		rows = append(rows, []string{info.Name, string(info.Source), path})
	}

	header := lipgloss.NewStyle().Bold(true).Padding(0, 1)
	cell := lipgloss.NewStyle().Padding(0, 1)
	t := table.New().
		Border(lipgloss.NormalBorder()).
		Headers("NAME", "SOURCE", "PATH").
		Rows(rows...).
		StyleFunc(func(row, col int) lipgloss.Style {
			if row == table.HeaderRow {
				return header
			}
			return cell
		})
	fmt.Println(t.Render())
	return nil
}

func showStyle(name string) error {
	st, err := style.Load(name, logger)
	if err != nil {
		return err
	}

	var format config.Format
	switch stylesOpts.format {
	case "toml":
		format = config.FormatTOML
	case "yaml":
		format = config.FormatYAML
	default:
		return fmt.Errorf("invalid format %q, must be toml or yaml", stylesOpts.format)
	}

	if stylesOpts.save != "" {
		path := config.StylePath(stylesOpts.save)
		if filepath.Ext(path) == "" {
			path += "." + string(format)
		}
		if err := st.Config.Save(path); err != nil {
			return err
		}
		fmt.Println(path)
		return nil
	}

	data, err := config.Encode(st.Config, format)
	if err != nil {
		return err
	}
	_, err = os.Stdout.Write(data)
	return err
}
