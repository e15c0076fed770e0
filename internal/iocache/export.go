package iocache

import (
	"errors"
	"fmt"
	"io"

	"github.com/huangsam/streakline/internal/contract"
	"github.com/huangsam/streakline/internal/parquet"
)

// ErrNoHistory is returned when there is nothing recorded to export.
var ErrNoHistory = errors.New("no snapshot history found to export")

// ExecuteHistoryExport writes recorded snapshots and grid cells to Parquet files
// named after outputFile, reporting progress to w.
func ExecuteHistoryExport(w io.Writer, mgr contract.CacheManager, outputFile string) error {
	if outputFile == "" {
		return errors.New("--output-file is required for export command")
	}

	store := mgr.GetHistoryStore()
	if store == nil {
		return errors.New("snapshot history is not initialized")
	}

	status, err := store.GetStatus()
	if err != nil {
		return fmt.Errorf("failed to get history status: %w", err)
	}
	if status.TotalSnapshots == 0 {
		return ErrNoHistory
	}

	_, _ = fmt.Fprintf(w, "Exporting data from %s backend...\n", status.Backend)
	_, _ = fmt.Fprintf(w, "Total snapshots: %d\n", status.TotalSnapshots)
	_, _ = fmt.Fprintf(w, "Total grid cells: %d\n", status.TableSizes[gridCellsTable])

	snapshots, err := store.GetAllSnapshots()
	if err != nil {
		return fmt.Errorf("failed to retrieve snapshots: %w", err)
	}
	cells, err := store.GetAllGridCells()
	if err != nil {
		return fmt.Errorf("failed to retrieve grid cells: %w", err)
	}

	runs := parquet.ConvertSnapshotRecords(snapshots)
	snapshotsFile := outputFile + ".snapshots.parquet"
	if err := parquet.WriteSnapshotRunsParquet(runs, snapshotsFile); err != nil {
		return fmt.Errorf("failed to write snapshots: %w", err)
	}
	_, _ = fmt.Fprintf(w, "Exported %d snapshots to: %s\n", len(runs), snapshotsFile)

	gridCells := parquet.ConvertGridCellRecords(cells)
	cellsFile := outputFile + ".grid_cells.parquet"
	if err := parquet.WriteGridCellsParquet(gridCells, cellsFile); err != nil {
		return fmt.Errorf("failed to write grid cells: %w", err)
	}
	_, _ = fmt.Fprintf(w, "Exported %d grid cells to: %s\n", len(gridCells), cellsFile)

	_, _ = fmt.Fprintln(w, "\nExport complete! The Parquet files can be read with DuckDB, Pandas (via pyarrow), Apache Arrow or Spark.")
	return nil
}
