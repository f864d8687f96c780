package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/ayusman/hcs/internal/gesture"
)

var modelCmd = &cobra.Command{
	Use:   "model",
	Short: "Manage the gesture model artifact",
}

var modelImportCmd = &cobra.Command{
	Use:   "import <model.json> <model.db>",
	Short: "Import centroids exported by a training tool into a model artifact",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		f, err := os.Open(args[0])
		if err != nil {
			return err
		}
		defer f.Close()

		model, err := gesture.DecodeModel(f)
		if err != nil {
			return fmt.Errorf("%s: %w", args[0], err)
		}
		if err := model.Validate(); err != nil {
			return fmt.Errorf("%s: %w", args[0], err)
		}
		if err := gesture.SaveModel(args[1], model); err != nil {
			return err
		}

		fmt.Printf("imported %d classes (%d features) into %s\n", len(model.Classes()), model.Dim(), args[1])
		return nil
	},
}

var modelInfoCmd = &cobra.Command{
	Use:   "info <model.db>",
	Short: "Print the classes of a model artifact",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		model, err := gesture.LoadModel(args[0])
		if err != nil {
			return err
		}

		fmt.Printf("%s: %d features\n", args[0], model.Dim())
		for _, label := range model.Classes() {
			fmt.Printf("  %d\t%s\n", label, gesture.Type(label))
		}
		return nil
	},
}

func init() {
	modelCmd.AddCommand(modelImportCmd, modelInfoCmd)
	rootCmd.AddCommand(modelCmd)
}
