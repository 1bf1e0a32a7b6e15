package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/ridoystarlord/packpipe/compiler"
	"github.com/ridoystarlord/packpipe/pack"
	"github.com/ridoystarlord/packpipe/staging"
)

var (
	packoutOut    string
	packoutClient string
)

var packoutCmd = &cobra.Command{
	Use:   "packout <bundle>",
	Short: "Compile a staged bundle into a distributable model package",
	Long: `Compile a staged bundle into a full metadata graph and write it as
a model package archive. Nothing is written to the target database.

Examples:
  packpipe packout "HR Management"
  packpipe packout "HR Management" --out dist
  packpipe packout "HR Management" --client "11-GardenWorld-GardenWorld"
`,
	Args: cobra.ExactArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		store, err := openStore()
		if err != nil {
			fmt.Println("❌ Staging store error:", err)
			os.Exit(1)
		}

		opID, err := store.BeginOperation("packout", args[0], "")
		if err != nil {
			fmt.Println("❌ Staging store error:", err)
			os.Exit(1)
		}

		graph, _, _, err := compileBundle(store, args[0])
		if err != nil {
			store.CompleteOperation(opID, staging.StatusFailed, staging.Counters{Errors: 1})
			fmt.Println("❌ Compile failed:", err)
			os.Exit(1)
		}
		for _, w := range graph.Warnings {
			fmt.Println("⚠️ ", w)
		}

		writer := pack.NewWriter(packoutOut)
		if packoutClient != "" {
			writer.ClientScope = packoutClient
		}

		zipPath, err := writer.WriteGraph(graph)
		if err != nil {
			store.CompleteOperation(opID, staging.StatusFailed, staging.Counters{Errors: 1})
			fmt.Println("❌ Writing package failed:", err)
			os.Exit(1)
		}
		store.CompleteOperation(opID, staging.StatusSuccess, staging.Counters{
			Tables:  len(graph.Tables),
			Columns: graph.ColumnCount(),
			Windows: len(graph.Windows),
		})

		fmt.Printf("✅ Package written: %s\n", zipPath)
		fmt.Printf("📊 %d element(s), %d table(s), %d column(s), %d window(s), %d tab(s), %d field(s), %d menu(s)\n",
			len(graph.Elements), len(graph.Tables), graph.ColumnCount(),
			len(graph.Windows), graph.TabCount(), graph.FieldCount(), len(graph.Menus))
	},
}

func init() {
	packoutCmd.Flags().StringVarP(&packoutOut, "out", "o", ".", "Output directory for the package archive")
	packoutCmd.Flags().StringVarP(&packoutClient, "client", "c", "", "Client scope attribute (id-value-name)")
}

// compileBundle loads a staged header and compiles it into a graph.
func compileBundle(store *staging.Store, name string) (*compiler.Graph, *staging.Header, []staging.TableDef, error) {
	header, err := store.HeaderByName(name)
	if err != nil {
		return nil, nil, nil, err
	}
	tables, err := store.TablesForHeader(header.UUID)
	if err != nil {
		return nil, nil, nil, err
	}

	in := compiler.Input{
		BundleName:  header.Name,
		Version:     header.Version,
		Description: header.Description,
		Author:      header.Author,
	}
	for _, t := range tables {
		in.Tables = append(in.Tables, compiler.TableInput{
			Name:        t.Name,
			Master:      t.Master,
			Description: t.Description,
			Help:        t.Help,
			Columns:     t.Columns(),
		})
	}

	graph, err := compiler.Compile(in, compiler.DefaultBases())
	if err != nil {
		return nil, nil, nil, err
	}
	return graph, header, tables, nil
}
