package metadata

import "github.com/google/uuid"

type ResourceType uint8

/** @brief Pre-defined resource types. */
const (
	ResourceTypeNone ResourceType = iota
	/** @brief Raw binary resource type. */
	ResourceTypeBinary
	/** @brief A scene node and its subtree. */
	ResourceTypeSceneNode
	/** @brief A level-of-detail group. */
	ResourceTypeLODGroup
	/** @brief An occlusion mesh used for visibility culling. */
	ResourceTypeOcclusionMesh
	/** @brief A material with its named pass bindings. */
	ResourceTypeMaterial
	/** @brief A compiled effect (shader stages). */
	ResourceTypeEffect
	/** @brief Custom resource type. Used by readers outside the core set. */
	ResourceTypeCustom
)

func (rt ResourceType) String() string {
	switch rt {
	case ResourceTypeBinary:
		return "binary"
	case ResourceTypeSceneNode:
		return "scene-node"
	case ResourceTypeLODGroup:
		return "lod-group"
	case ResourceTypeOcclusionMesh:
		return "occlusion-mesh"
	case ResourceTypeMaterial:
		return "material"
	case ResourceTypeEffect:
		return "effect"
	case ResourceTypeCustom:
		return "custom"
	default:
		return "none"
	}
}

/** @brief A magic number indicating the file as an anima content file. */
const ResourceMagic uint32 = 0xdaaaadd1

/** @brief The only content format version this build reads and writes. */
const ResourceFormatVersion uint8 = 1

/**
 * @brief The header data for binary content files.
 */
type ResourceHeader struct {
	MagicNumber uint32
	/** @brief The type of the primary object. */
	ResourceType ResourceType
	/** @brief The format version this resource uses. */
	Version uint8
	/** @brief Reserved for future header data. */
	Reserved uint16
}

/**
 * @brief A generic structure for a loaded resource. The content manager
 * hands these out for every asset it loads.
 */
type Resource struct {
	/** @brief Unique identifier assigned when the resource is loaded. */
	ID uuid.UUID
	/** @brief Runtime handle of the resource inside its content manager. */
	Handle uint32
	/** @brief The name of the resource. */
	Name string
	/** @brief The full file path of the resource. */
	FullPath string
	/** @brief The size of the resource file in bytes. */
	DataSize uint64
	Type     ResourceType
	/** @brief The decoded object graph. */
	Data interface{}
}

// TypeOf maps a decoded object to its resource type.
func TypeOf(v interface{}) ResourceType {
	switch v.(type) {
	case *LODGroup:
		return ResourceTypeLODGroup
	case *Node:
		return ResourceTypeSceneNode
	case *OcclusionMesh:
		return ResourceTypeOcclusionMesh
	case *Material:
		return ResourceTypeMaterial
	case *Effect:
		return ResourceTypeEffect
	case []byte, []uint32:
		return ResourceTypeBinary
	case nil:
		return ResourceTypeNone
	default:
		return ResourceTypeCustom
	}
}
