package cmd

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"github.com/ridoystarlord/packpipe/sqlfile"
	"github.com/ridoystarlord/packpipe/staging"
)

var sql2packCmd = &cobra.Command{
	Use:   "sql2pack <file.sql>",
	Short: "Convert an SQL insert script into a staged data pack",
	Long: `Parse INSERT statements from an SQL file and stage the rows as a data
pack. The pack is named after the file and can be applied with
'packpipe apply-data'.

Examples:
  packpipe sql2pack seed/reference-data.sql
`,
	Args: cobra.ExactArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		data, err := os.ReadFile(args[0])
		if err != nil {
			fmt.Println("❌ Reading SQL file failed:", err)
			os.Exit(1)
		}

		inserts := sqlfile.ParseInserts(string(data))
		if len(inserts) == 0 {
			fmt.Println("❌ No INSERT statements found in", args[0])
			os.Exit(1)
		}

		packName := strings.TrimSuffix(filepath.Base(args[0]), filepath.Ext(args[0]))

		var records []staging.PackRecord
		seq := 0
		for _, ins := range inserts {
			idColumn := ins.Table + "_id"
			for _, row := range ins.Rows {
				seq++
				rec := staging.PackRecord{
					TableName: ins.Table,
					Values:    map[string]string{},
					SeqNo:     seq,
				}
				for i, col := range ins.Columns {
					if i >= len(row) {
						break
					}
					rec.Values[col] = row[i]
					if col == idColumn {
						if id, err := strconv.Atoi(row[i]); err == nil {
							rec.TargetID = id
						}
					}
				}
				records = append(records, rec)
			}
		}

		store, err := openStore()
		if err != nil {
			fmt.Println("❌ Staging store error:", err)
			os.Exit(1)
		}

		opID, err := store.BeginOperation("sql2pack", args[0], "")
		if err != nil {
			fmt.Println("❌ Staging store error:", err)
			os.Exit(1)
		}

		packUU, err := store.StagePack(opID, packName, "1.0.0", args[0], records)
		if err != nil {
			store.CompleteOperation(opID, staging.StatusFailed, staging.Counters{Errors: 1})
			fmt.Println("❌ Staging pack failed:", err)
			os.Exit(1)
		}
		store.CompleteOperation(opID, staging.StatusSuccess, staging.Counters{Tables: len(inserts)})

		fmt.Printf("✅ Staged pack: %s (%d records)\n", packName, len(records))
		counts, err := store.PackTableCounts(packUU)
		if err == nil {
			for _, tc := range counts {
				fmt.Printf("   - %s: %d\n", tc.TableName, tc.Count)
			}
		}
		fmt.Printf("🚀 Run 'packpipe apply-data %s' to write the rows to the target store\n", packName)
	},
}
