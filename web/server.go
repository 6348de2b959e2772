package web

import (
	"log"
	"net/http"
	"os"
	"path"

	"github.com/gorilla/handlers"
	"github.com/gorilla/mux"

	"github.com/mogaika/gltf_scene_browser/fetch"
	"github.com/mogaika/gltf_scene_browser/scene"
)

var ServerSource fetch.Source
var ServerRegistry *scene.ShaderRegistry

func SetSource(src fetch.Source, reg *scene.ShaderRegistry) {
	ServerSource = src
	ServerRegistry = reg
}

// StartServer exposes the documents of a source over http: listing,
// loading into scene trees, geometry inspection, gltf/fbx dumps and a
// websocket status stream. webPath points at the static viewer files.
func StartServer(addr string, src fetch.Source, reg *scene.ShaderRegistry, webPath string) error {
	SetSource(src, reg)

	r := mux.NewRouter()
	r.HandleFunc("/json/documents", HandlerAjaxDocuments)
	r.HandleFunc("/json/document/{name:.+}/geometry/{mesh}", HandlerAjaxDocumentGeometry)
	r.HandleFunc("/json/document/{name:.+}/tree", HandlerAjaxDocumentTree)
	r.HandleFunc("/json/document/{name:.+}", HandlerAjaxDocument)
	r.HandleFunc("/dump/document/{name:.+}/gltf", HandlerDumpDocumentGLTF)
	r.HandleFunc("/dump/document/{name:.+}/fbx", HandlerDumpDocumentFBX)
	r.HandleFunc("/upload/document", HandlerUploadDocument)
	r.HandleFunc("/ws/status", HandlerWebsocketStatus)

	r.PathPrefix("/").Handler(http.FileServer(http.Dir(path.Join(webPath, "data"))))

	h := handlers.RecoveryHandler()(r)
	h = handlers.LoggingHandler(os.Stdout, h)

	log.Printf("[web] Starting server %v", addr)

	return http.ListenAndServe(addr, h)
}
