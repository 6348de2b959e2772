package main

import (
	"context"
	"flag"
	"log"
	"os"
	"path"

	"github.com/mogaika/gltf_scene_browser/config"
	"github.com/mogaika/gltf_scene_browser/fetch"
	"github.com/mogaika/gltf_scene_browser/loader"
	"github.com/mogaika/gltf_scene_browser/scene"
	"github.com/mogaika/gltf_scene_browser/utils/gltfutils"
	"github.com/mogaika/gltf_scene_browser/web"
)

func exportScene(src fetch.Source, reg *scene.ShaderRegistry, name, gltfOut, fbxOut string) error {
	l := loader.New(src, reg)
	l.Events = loader.Events{
		OnError: func(err error) { log.Printf("[export] %v", err) },
	}
	lib, err := l.Load(context.Background(), name)
	if err != nil {
		return err
	}

	if gltfOut != "" {
		f, err := os.Create(gltfOut)
		if err != nil {
			return err
		}
		defer f.Close()
		if err := gltfutils.ExportBinary(f, lib.ExportGLTFDefault()); err != nil {
			return err
		}
		log.Printf("[export] Saved %q as %q", name, gltfOut)
	}

	if fbxOut != "" {
		f, err := os.Create(fbxOut)
		if err != nil {
			return err
		}
		defer f.Close()
		if err := lib.ExportFbxDefault().Write(f); err != nil {
			return err
		}
		log.Printf("[export] Saved %q as %q", name, fbxOut)
	}

	return nil
}

func main() {
	var addr, dir, url, sceneName, gltfOut, fbxOut, shadersPath, schemaVer, webPath string
	var checkParse, verbose bool
	flag.StringVar(&addr, "i", ":8000", "Address of server")
	flag.StringVar(&dir, "dir", "", "Path to folder with scene documents")
	flag.StringVar(&url, "url", "", "Base url to fetch scene documents from")
	flag.StringVar(&sceneName, "scene", "", "Document to export instead of starting server")
	flag.StringVar(&gltfOut, "gltf", "", "Where to save the gltf export of -scene")
	flag.StringVar(&fbxOut, "fbx", "", "Where to save the fbx export of -scene")
	flag.StringVar(&shadersPath, "shaders", "", "Shader registry yaml override")
	flag.StringVar(&schemaVer, "schema", "auto", "Document schema generation: auto, 0.8 or 1.0")
	flag.StringVar(&webPath, "web", "web", "Path to static viewer files")
	flag.BoolVar(&checkParse, "parsecheck", false, "Try to load every document of the source and exit")
	flag.BoolVar(&verbose, "v", false, "Dump resolved material tables during -parsecheck")
	flag.Parse()

	switch schemaVer {
	case "", "auto":
		config.SetSchemaVersion(config.SchemaUnknown)
	case "0.8":
		config.SetSchemaVersion(config.Schema08)
	case "1.0":
		config.SetSchemaVersion(config.Schema10)
	default:
		log.Fatalf("Unknown schema generation %q", schemaVer)
	}

	reg := scene.DefaultShaderRegistry()
	if shadersPath != "" {
		var err error
		if reg, err = scene.LoadShaderRegistryFile(shadersPath); err != nil {
			log.Fatal(err)
		}
	}

	var src fetch.Source
	if url != "" {
		src = fetch.NewHTTPSource(url)
	} else if dir != "" {
		src = fetch.NewDirSource(dir)
	} else {
		flag.PrintDefaults()
		return
	}

	if checkParse {
		parseCheck(src, reg, verbose)
		return
	}

	if sceneName != "" {
		if gltfOut == "" && fbxOut == "" {
			gltfOut = path.Base(sceneName) + ".glb"
		}
		if err := exportScene(src, reg, sceneName, gltfOut, fbxOut); err != nil {
			log.Fatal(err)
		}
		return
	}

	if err := web.StartServer(addr, src, reg, webPath); err != nil {
		log.Fatal(err)
	}
}
