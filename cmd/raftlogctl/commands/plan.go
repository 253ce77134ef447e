package commands

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/raftlog/compactor/compaction"
	"github.com/raftlog/compactor/compaction/executor"
	"github.com/raftlog/compactor/format"
	"github.com/raftlog/compactor/manager"
	"github.com/raftlog/compactor/segment"
)

func planCmd() *cobra.Command {
	var (
		dir         string
		commitIndex uint64
		threshold   float64
	)

	cmd := &cobra.Command{
		Use:   "plan",
		Short: "Dry-run the compaction planner against a directory of segment files",
		Long: `plan loads every *.seg file in --dir as a rewritten-segment image, builds
an in-memory segment manager from them, and prints the groups the planner
would submit for rewrite at the given commit index. It never writes
anything back.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			segs, err := loadSegments(dir)
			if err != nil {
				return err
			}

			sm := manager.New(commitIndex, segs...)
			storage := compaction.FixedThreshold(threshold)
			tasks := compaction.BuildTasks(storage, sm)

			printTasks(cmd, tasks)
			return nil
		},
	}

	cmd.Flags().StringVar(&dir, "dir", "", "directory of *.seg segment images (required)")
	cmd.Flags().Uint64Var(&commitIndex, "commit-index", 0, "Raft commit index to plan against (required)")
	cmd.Flags().Float64Var(&threshold, "threshold", 0.5, "compaction threshold")
	_ = cmd.MarkFlagRequired("dir")
	_ = cmd.MarkFlagRequired("commit-index")

	return cmd
}

// loadSegments reads every *.seg file under dir and reconstructs a
// segment.Segment from each image. The stable ID, version and index
// bounds come from the parsed footer, and the footer's entry count (at
// least 1) is used as the slot length. Every loaded segment is marked
// full; it counts as compacted when its version is above 1.
func loadSegments(dir string) ([]segment.Segment, error) {
	matches, err := filepath.Glob(filepath.Join(dir, "*.seg"))
	if err != nil {
		return nil, fmt.Errorf("plan: glob %s: %w", dir, err)
	}
	sort.Strings(matches)

	segs := make([]segment.Segment, 0, len(matches))
	for _, path := range matches {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("plan: read %s: %w", path, err)
		}
		img, err := format.ReadImage(data)
		if err != nil {
			return nil, fmt.Errorf("plan: parse %s: %w", path, err)
		}

		desc := segment.Descriptor{
			ID:      img.Footer.ID,
			Version: img.Footer.Version,
			Index:   img.Footer.FirstIndex,
		}
		length := int(img.Footer.EntryCount)
		if length == 0 {
			length = 1
		}
		segs = append(segs, executor.NewMemorySegment(
			desc, img.Footer.FirstIndex, img.Footer.LastIndex, length, true, img.Entries(),
		))
	}
	return segs, nil
}

func printTasks(cmd *cobra.Command, tasks []compaction.Task) {
	w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
	defer w.Flush()

	fmt.Fprintln(w, "GROUP\tFIRST\tSEGMENTS\tTARGET ID\tTARGET VERSION\tTARGET CAPACITY")
	for i, t := range tasks {
		fmt.Fprintf(w, "%d\t%d\t%d\t%s\t%d\t%d\n",
			i, t.FirstIndex(), len(t.Segments), t.TargetID(), t.TargetVersion(), t.TargetCapacity())
	}
	if len(tasks) == 0 {
		fmt.Fprintln(w, "(no eligible groups)\t\t\t\t\t")
	}
}
