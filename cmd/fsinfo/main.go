package main

import (
	"flag"
	"fmt"
	"log"
	"math"
	"os"
	"path/filepath"

	"gonum.org/v1/gonum/stat"

	"github.com/dfsp-spirit/libfs/internal/models"
	"github.com/dfsp-spirit/libfs/pkg/config"
	"github.com/dfsp-spirit/libfs/pkg/fsio"
	"github.com/dfsp-spirit/libfs/pkg/mesh"
)

func main() {
	// Parse command line arguments
	inputFile := flag.String("file", "", "Single FreeSurfer file to inspect (curv, surf, mgh, mgz, label, annot)")
	subjectID := flag.String("subject", "", "Subject identifier of a subject pre-processed with recon-all")
	subjectsDir := flag.String("subjects-dir", os.Getenv("SUBJECTS_DIR"), "Path to the recon-all output dir for all subjects (default: env SUBJECTS_DIR)")
	configPath := flag.String("config", "fsinfo.yaml", "Path to the YAML configuration file")
	exportPath := flag.String("export", "", "Optional output path; an inspected surface mesh is written there in the configured output.meshFormat")
	flag.Parse()

	if *inputFile == "" && *subjectID == "" {
		flag.Usage()
		os.Exit(1)
	}

	cfg, err := config.LoadConfig(*configPath)
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	fmt.Println("================================")
	fmt.Println("FSINFO -- inspect FreeSurfer neuroimaging files")
	fmt.Println("================================")

	if *inputFile != "" {
		if err := inspectFile(*inputFile, *exportPath, cfg); err != nil {
			log.Fatalf("Failed to inspect %s: %v", *inputFile, err)
		}
		return
	}

	if *subjectsDir == "" {
		log.Fatalf("Environment variable SUBJECTS_DIR not set, must specify -subjects-dir in that case")
	}
	inspectSubject(*subjectID, *subjectsDir, cfg)
}

// inspectSubject scans the conventional recon-all output layout of one
// subject and reports on every file it finds.
func inspectSubject(subjectID, subjectsDir string, cfg *config.Config) {
	subjectDir := filepath.Join(subjectsDir, subjectID)
	fmt.Printf("Using subject data from '%s'.\n", subjectDir)

	hemis := []string{"lh", "rh"}
	surfaces := []string{"white", "pial"}
	measures := []string{"thickness", "area", "volume"}

	for _, surf := range surfaces {
		for _, hemi := range hemis {
			surfFile := filepath.Join(subjectDir, "surf", hemi+"."+surf)
			if _, err := os.Stat(surfFile); err != nil {
				fmt.Printf("Missing %s mesh of %s surface at '%s'.\n", hemi, surf, surfFile)
				continue
			}
			if err := inspectFile(surfFile, "", cfg); err != nil {
				log.Printf("Warning: failed to read %s: %v", surfFile, err)
			}
		}
	}
	for _, measure := range measures {
		for _, hemi := range hemis {
			curvFile := filepath.Join(subjectDir, "surf", hemi+"."+measure)
			if _, err := os.Stat(curvFile); err != nil {
				fmt.Printf("Missing %s native space data file for %s at '%s'.\n", hemi, measure, curvFile)
				continue
			}
			if err := inspectFile(curvFile, "", cfg); err != nil {
				log.Printf("Warning: failed to read %s: %v", curvFile, err)
			}
		}
	}
	for _, hemi := range hemis {
		surfFile := filepath.Join(subjectDir, "surf", hemi+".white")
		curvFile := filepath.Join(subjectDir, "surf", hemi+".thickness")
		if err := smoothingDemo(hemi, surfFile, curvFile, cfg); err != nil {
			log.Printf("Warning: skipping %s smoothing demo: %v", hemi, err)
		}
	}
}

// smoothingDemo pairs a white surface with its thickness data and
// reports the effect of nearest-neighbor smoothing on the field.
func smoothingDemo(hemi, surfFile, curvFile string, cfg *config.Config) error {
	m, err := fsio.ReadSurf(surfFile)
	if err != nil {
		return err
	}
	data, err := fsio.ReadCurvData(curvFile)
	if err != nil {
		return err
	}

	adj, err := m.AdjacencyList(cfg.Topology.AdjacencyViaMatrix)
	if err != nil {
		return err
	}
	smoothed, err := mesh.SmoothData(adj, data, cfg.Topology.SmoothingIterations)
	if err != nil {
		return err
	}
	fmt.Printf("\nSmoothing demo for hemisphere %s (%d iterations):\n", hemi, cfg.Topology.SmoothingIterations)
	printDataSummary("raw thickness", curvToFloat64(data))
	printDataSummary("smoothed thickness", curvToFloat64(smoothed))
	return nil
}

// inspectFile reads one file via the extension dispatch and prints a
// summary of its contents. When exportPath is non-empty and the file
// holds a surface mesh, the mesh is also written there in the
// configured interchange format.
func inspectFile(path, exportPath string, cfg *config.Config) error {
	result, err := fsio.Read(path)
	if err != nil {
		return err
	}

	fmt.Printf("\n%s:\n", path)
	switch {
	case result.Curv != nil:
		printDataSummary("per-vertex data", curvToFloat64(result.Curv.Data))
	case result.Mesh != nil:
		printMeshSummary(result.Mesh, cfg)
		if exportPath != "" {
			if err := exportMesh(result.Mesh, exportPath, cfg.Output.MeshFormat); err != nil {
				return err
			}
			fmt.Printf("  Exported mesh to '%s' (%s format)\n", exportPath, cfg.Output.MeshFormat)
		}
	case result.Mgh != nil:
		vol := volumeSummary(result.Mgh)
		fmt.Printf("  MGH volume of %dx%dx%dx%d values (dtype %d)\n",
			vol.Width, vol.Height, vol.Depth, vol.Frames, result.Mgh.Header.Dtype)
		if result.Mgh.Header.RasGoodFlag == 1 {
			fmt.Printf("  Voxel size: %.2f x %.2f x %.2f mm\n", vol.VoxelSize.X, vol.VoxelSize.Y, vol.VoxelSize.Z)
		}
		printDataSummary("voxel data", vol.Data)
	case result.Label != nil:
		fmt.Printf("  Label with %d entries\n", result.Label.NumEntries())
	case result.Annot != nil:
		fmt.Printf("  Annotation of %d vertices with %d regions\n",
			result.Annot.NumVertices(), result.Annot.Colortable.NumEntries())
		if cfg.Output.Verbose {
			for _, name := range result.Annot.Colortable.Name {
				verts, err := result.Annot.RegionVertices(name)
				if err != nil {
					continue
				}
				fmt.Printf("    region %-30s %8d vertices\n", name, len(verts))
			}
		}
	}
	return nil
}

func printMeshSummary(m *mesh.Mesh, cfg *config.Config) {
	min, max := m.CoordRange()
	summary := models.SurfaceSummary{
		NumVertices: m.NumVertices(),
		NumFaces:    m.NumFaces(),
		CoordMin:    min,
		CoordMax:    max,
	}
	fmt.Printf("  Surface mesh with %d vertices and %d faces\n", summary.NumVertices, summary.NumFaces)
	fmt.Printf("  Coordinate range: [%.4f, %.4f]\n", summary.CoordMin, summary.CoordMax)

	if cfg.Output.Verbose && m.NumVertices() > 0 {
		adj, err := m.AdjacencyList(cfg.Topology.AdjacencyViaMatrix)
		if err != nil {
			log.Printf("Warning: skipping neighbor counts: %v", err)
			return
		}
		if cfg.Topology.NeighborhoodHops > 1 {
			expanded, err := mesh.ExpandNeighborhood(adj, cfg.Topology.NeighborhoodHops)
			if err != nil {
				log.Printf("Warning: neighborhood expansion failed: %v", err)
			} else {
				adj = expanded
			}
		}
		minN, maxN := len(adj[0]), len(adj[0])
		for _, neighbors := range adj {
			if len(neighbors) < minN {
				minN = len(neighbors)
			}
			if len(neighbors) > maxN {
				maxN = len(neighbors)
			}
		}
		fmt.Printf("  Vertex neighbor counts (within %d hops): %d to %d\n", cfg.Topology.NeighborhoodHops, minN, maxN)
	}
}

// exportMesh writes a mesh to path in the named interchange format,
// one of "obj", "ply" or "off".
func exportMesh(m *mesh.Mesh, path, format string) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("creating mesh export file: %w", err)
	}
	defer f.Close()
	switch format {
	case "obj":
		err = m.WriteObj(f)
	case "ply":
		err = m.WritePly(f, nil)
	case "off":
		err = m.WriteOff(f)
	default:
		return fmt.Errorf("unknown mesh export format %q (supported: obj, ply, off)", format)
	}
	if err != nil {
		return fmt.Errorf("writing %s export to %s: %w", format, path, err)
	}
	return f.Close()
}

func printDataSummary(what string, data []float64) {
	if len(data) == 0 {
		fmt.Printf("  Empty %s\n", what)
		return
	}
	mean, std := stat.MeanStdDev(data, nil)
	if math.IsNaN(std) {
		// A single value has no deviation.
		std = 0
	}
	fmt.Printf("  %d %s values, mean %.4f, standard deviation %.4f\n", len(data), what, mean, std)
}

func curvToFloat64(data []float32) []float64 {
	out := make([]float64, len(data))
	for i, v := range data {
		out[i] = float64(v)
	}
	return out
}

// volumeSummary converts a decoded MGH volume to the CLI reporting view.
func volumeSummary(m *fsio.Mgh) *models.VolumeSummary {
	vol := &models.VolumeSummary{
		Width:  int(m.Header.Dim1),
		Height: int(m.Header.Dim2),
		Depth:  int(m.Header.Dim3),
		Frames: int(m.Header.Dim4),
	}
	vol.VoxelSize.X = float64(m.Header.XSize)
	vol.VoxelSize.Y = float64(m.Header.YSize)
	vol.VoxelSize.Z = float64(m.Header.ZSize)

	switch m.Data.Dtype {
	case fsio.MriUchar:
		vol.Data = make([]float64, len(m.Data.Uchar))
		for i, v := range m.Data.Uchar {
			vol.Data[i] = float64(v)
		}
	case fsio.MriInt:
		vol.Data = make([]float64, len(m.Data.Int))
		for i, v := range m.Data.Int {
			vol.Data[i] = float64(v)
		}
	case fsio.MriFloat:
		vol.Data = make([]float64, len(m.Data.Float))
		for i, v := range m.Data.Float {
			vol.Data[i] = float64(v)
		}
	case fsio.MriShort:
		vol.Data = make([]float64, len(m.Data.Short))
		for i, v := range m.Data.Short {
			vol.Data[i] = float64(v)
		}
	}
	return vol
}
