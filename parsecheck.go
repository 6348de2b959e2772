package main

import (
	"context"
	"log"
	"path"
	"sort"
	"strings"

	"github.com/mogaika/gltf_scene_browser/fetch"
	"github.com/mogaika/gltf_scene_browser/loader"
	"github.com/mogaika/gltf_scene_browser/scene"
	"github.com/mogaika/gltf_scene_browser/utils"
)

// parseCheck loads every document the source lists and reports what broke.
// Debug helper for running parser changes against a whole asset tree.
func parseCheck(src fetch.Source, reg *scene.ShaderRegistry, verbose bool) {
	names, err := src.List()
	if err != nil {
		log.Fatal(err)
	}
	sort.Strings(names)

	checked, failed := 0, 0
	for _, name := range names {
		switch strings.ToLower(path.Ext(name)) {
		case ".gltf", ".glb", ".json":
		default:
			continue
		}
		checked++

		errCount := 0
		l := loader.New(src, reg)
		l.Events = loader.Events{
			OnError: func(err error) {
				errCount++
				log.Printf("E %.48s: %v", name, err)
			},
		}

		lib, err := l.Load(context.Background(), name)
		if err != nil || errCount != 0 {
			failed++
			continue
		}
		log.Printf("OK %.48s: %d nodes, %d meshes, %d materials",
			name, len(lib.Graph.Nodes), len(lib.Meshes), len(lib.Materials))
		if verbose {
			utils.LogDump(lib.Materials)
		}
	}
	log.Printf("Checked %d documents, %d with errors", checked, failed)
}
