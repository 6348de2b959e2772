package scene

// Library is the result of one document load: the node arena with a single
// root, plus name-keyed lookup tables for every entity kind, and the
// optional aggregate animation clip.
type Library struct {
	Name string

	Graph *Graph
	Root  NodeID

	Cameras   map[string]*Camera
	Textures  map[string]*Texture
	Materials map[string]*Material
	Meshes    map[string]*Mesh
	Skeletons map[string]*Skeleton

	Animation *CompositeClip
}

func NewLibrary(name string) *Library {
	return &Library{
		Name:      name,
		Graph:     NewGraph(),
		Root:      NODE_INVALID,
		Cameras:   make(map[string]*Camera),
		Textures:  make(map[string]*Texture),
		Materials: make(map[string]*Material),
		Meshes:    make(map[string]*Mesh),
		Skeletons: make(map[string]*Skeleton),
	}
}
