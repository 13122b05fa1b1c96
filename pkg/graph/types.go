package graph

import (
	"fmt"
	"strconv"

	mapset "github.com/deckarep/golang-set/v2"
)

// EntityType represents one of the fixed LDBC vertex types
type EntityType string

const (
	EntityComment      EntityType = "comment"
	EntityForum        EntityType = "forum"
	EntityPerson       EntityType = "person"
	EntityPost         EntityType = "post"
	EntityPlace        EntityType = "place"
	EntityTag          EntityType = "tag"
	EntityTagClass     EntityType = "tagclass"
	EntityOrganisation EntityType = "organisation"
)

// EntityTypes lists every entity type in prefix order
var EntityTypes = []EntityType{
	EntityComment,
	EntityForum,
	EntityPerson,
	EntityPost,
	EntityPlace,
	EntityTag,
	EntityTagClass,
	EntityOrganisation,
}

var entityPrefixes = map[EntityType]string{
	EntityComment:      "1",
	EntityForum:        "2",
	EntityPerson:       "3",
	EntityPost:         "4",
	EntityPlace:        "5",
	EntityTag:          "6",
	EntityTagClass:     "7",
	EntityOrganisation: "8",
}

var entityHeaders = map[EntityType]string{
	EntityComment:      "Comment.id",
	EntityForum:        "Forum.id",
	EntityPerson:       "Person.id",
	EntityPost:         "Post.id",
	EntityPlace:        "Place.id",
	EntityTag:          "Tag.id",
	EntityTagClass:     "TagClass.id",
	EntityOrganisation: "Organisation.id",
}

// ParseEntityType returns the entity type named by s
func ParseEntityType(s string) (EntityType, bool) {
	e := EntityType(s)
	_, ok := entityPrefixes[e]
	return e, ok
}

// Prefix returns the one-digit id namespace of the entity type
func (e EntityType) Prefix() string {
	return entityPrefixes[e]
}

// Header returns the canonical id column name used in transformed files
func (e EntityType) Header() string {
	return entityHeaders[e]
}

func (e EntityType) String() string {
	return string(e)
}

// RelationType represents one of the fixed LDBC edge labels
type RelationType string

const (
	RelationHasType      RelationType = "hasType"
	RelationIsLocatedIn  RelationType = "isLocatedIn"
	RelationIsSubclassOf RelationType = "isSubclassOf"
	RelationIsPartOf     RelationType = "isPartOf"
	RelationStudyAt      RelationType = "studyAt"
	RelationContainerOf  RelationType = "containerOf"
	RelationHasCreator   RelationType = "hasCreator"
	RelationHasTag       RelationType = "hasTag"
	RelationHasModerator RelationType = "hasModerator"
	RelationReplyOf      RelationType = "replyOf"
	RelationHasMember    RelationType = "hasMember"
	RelationHasInterest  RelationType = "hasInterest"
	RelationLikes        RelationType = "likes"
	RelationWorkAt       RelationType = "workAt"
	RelationKnows        RelationType = "knows"
)

var relationCodes = map[RelationType]int{
	RelationHasType:      1,
	RelationIsLocatedIn:  2,
	RelationIsSubclassOf: 3,
	RelationIsPartOf:     4,
	RelationStudyAt:      5,
	RelationContainerOf:  6,
	RelationHasCreator:   7,
	RelationHasTag:       8,
	RelationHasModerator: 9,
	RelationReplyOf:      10,
	RelationHasMember:    11,
	RelationHasInterest:  12,
	RelationLikes:        13,
	RelationWorkAt:       14,
	RelationKnows:        15,
}

// ParseRelationType returns the relation named by s
func ParseRelationType(s string) (RelationType, bool) {
	r := RelationType(s)
	_, ok := relationCodes[r]
	return r, ok
}

// Code returns the numeric relation code written into edge files
func (r RelationType) Code() int {
	return relationCodes[r]
}

func (r RelationType) String() string {
	return string(r)
}

// TemporalClass tells whether edges of a relation carry a creation time
type TemporalClass int

const (
	Dynamic TemporalClass = iota
	Static
)

func (c TemporalClass) String() string {
	if c == Static {
		return "static"
	}
	return "dynamic"
}

type staticKey struct {
	src      EntityType
	relation RelationType
}

var staticRelations = mapset.NewSet(
	staticKey{EntityForum, RelationHasModerator},
	staticKey{EntityOrganisation, RelationIsLocatedIn},
	staticKey{EntityPlace, RelationIsPartOf},
	staticKey{EntityTagClass, RelationIsSubclassOf},
	staticKey{EntityTag, RelationHasType},
)

// TemporalClassOf looks up the partition of (src, relation) edges
func TemporalClassOf(src EntityType, relation RelationType) TemporalClass {
	if staticRelations.Contains(staticKey{src, relation}) {
		return Static
	}
	return Dynamic
}

// DenseID is a globally unique vertex identifier after densification
type DenseID uint64

func (d DenseID) String() string {
	return strconv.FormatUint(uint64(d), 10)
}

// EdgeLabel represents a (source, relation, destination) triple
type EdgeLabel struct {
	Src      EntityType
	Relation RelationType
	Dst      EntityType
}

// Name returns the dash-joined label used for transformed edge file names
func (l EdgeLabel) Name() string {
	return fmt.Sprintf("%s-%s-%s", l.Src, l.Relation, l.Dst)
}

// SrcHeader returns the source id column of the edge table
func (l EdgeLabel) SrcHeader() string {
	return l.Src.Header()
}

// DstHeader returns the destination id column. Self loops reuse the source
// header with a repetition suffix.
func (l EdgeLabel) DstHeader() string {
	if l.Src == l.Dst {
		return l.Src.Header() + ".1"
	}
	return l.Dst.Header()
}

// ScaleFactorBits maps supported scale factors to dense id widths
var ScaleFactorBits = map[string]int{
	"0.1": 64,
}

const (
	ColumnLabel        = "label"
	ColumnID           = "id"
	ColumnCreationDate = "creationDate"
	ColumnJoinDate     = "joinDate"
)
