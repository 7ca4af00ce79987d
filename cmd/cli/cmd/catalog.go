package cmd

import (
	"github.com/spf13/cobra"
)

var (
	catalogOut      outputFlags
	catalogItemType string
)

// catalogCmd represents the catalog command
var catalogCmd = &cobra.Command{
	Use:   "catalog FILE",
	Short: "List every TYPE,NAME,VARIABLE triple in an output file",
	Long: `List the catalog of series available in an output file.

Every subcatchment, node and link is listed with each variable recorded for
its category, followed by the system variables. Pollutants are not listed on
their own; their concentrations appear as variables of the other categories.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		t, err := svc.Catalog(cmd.Context(), args[0], catalogItemType)
		if err != nil {
			return err
		}
		return catalogOut.emit(cmd, t)
	},
}

// listVariablesCmd represents the listvariables command
var listVariablesOut outputFlags

var listVariablesCmd = &cobra.Command{
	Use:   "listvariables FILE",
	Short: "List the variables recorded for each category",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		t, err := svc.ListVariables(cmd.Context(), args[0])
		if err != nil {
			return err
		}
		return listVariablesOut.emit(cmd, t)
	},
}

var (
	listDetailOut   outputFlags
	listDetailNames []string
)

// listDetailCmd represents the listdetail command
var listDetailCmd = &cobra.Command{
	Use:   "listdetail FILE TYPE",
	Short: "List the static properties of subcatchments, nodes or links",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		t, err := svc.ListDetail(cmd.Context(), args[0], args[1], listDetailNames...)
		if err != nil {
			return err
		}
		return listDetailOut.emit(cmd, t)
	},
}

func init() {
	rootCmd.AddCommand(catalogCmd, listVariablesCmd, listDetailCmd)

	catalogCmd.Flags().StringVar(&catalogItemType, "itemtype", "", "Only list this category (name or index 0-4)")
	catalogOut.register(catalogCmd)

	listVariablesOut.register(listVariablesCmd)

	listDetailCmd.Flags().StringSliceVar(&listDetailNames, "name", nil, "Only list these objects (repeatable or comma separated)")
	listDetailOut.register(listDetailCmd)
}
