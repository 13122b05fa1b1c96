package stream

import (
	"strconv"

	"github.com/athapong/ldbc-dense/pkg/graph"
	"github.com/pkg/errors"
)

// EventKind is the discriminant of an update stream record
type EventKind int

const (
	AddPerson EventKind = iota + 1
	AddLikePost
	AddLikeComment
	AddForum
	AddForumMembership
	AddPost
	AddComment
	AddFriendship
)

var eventKindNames = map[EventKind]string{
	AddPerson:          "add_person",
	AddLikePost:        "add_like_post",
	AddLikeComment:     "add_like_comment",
	AddForum:           "add_forum",
	AddForumMembership: "add_forum_membership",
	AddPost:            "add_post",
	AddComment:         "add_comment",
	AddFriendship:      "add_friendship",
}

func (k EventKind) String() string {
	if name, ok := eventKindNames[k]; ok {
		return name
	}
	return "unknown(" + strconv.Itoa(int(k)) + ")"
}

// ErrUnknownEventKind is returned for discriminants outside 1..8
var ErrUnknownEventKind = errors.New("unknown update stream event kind")

// ParseEventKind maps the discriminant column to an event kind
func ParseEventKind(s string) (EventKind, error) {
	n, err := strconv.Atoi(s)
	if err != nil {
		return 0, errors.Wrapf(ErrUnknownEventKind, "%q", s)
	}
	k := EventKind(n)
	if _, ok := eventKindNames[k]; !ok {
		return 0, errors.Wrapf(ErrUnknownEventKind, "%d", n)
	}
	return k, nil
}

// Column offsets shared by every record: scheduled time, dependency time and
// the event discriminant. Event parameters start at column 3.
const (
	colTimestamp     = 0
	colDependency    = 1
	colDiscriminant  = 2
	colFirstParam    = 3
	colSecondParam   = 4
	colThirdParam    = 5
	colPersonCity    = 11
	colPersonTags    = 14
	colPersonStudyAt = 15
	colPersonWorkAt  = 16
	colForumModID    = 6
	colForumTags     = 7
	colPostAuthor    = 11
	colPostForum     = 12
	colPostCountry   = 13
	colPostTags      = 14
	colCommentAuthor = 9
	colCommentPlace  = 10
	colCommentPost   = 11
	colCommentReply  = 12
	colCommentTags   = 13
)

type vertexField struct {
	idCol  int
	entity graph.EntityType
}

type edgeField struct {
	srcCol    int
	srcEntity graph.EntityType
	dstCol    int
	dstEntity graph.EntityType
}

// recordSchema names the columns an event kind reads and the events it emits
type recordSchema struct {
	timestampCol int
	vertex       *vertexField
	edges        []edgeField
}

var schemas = map[EventKind]recordSchema{
	AddPerson: {
		timestampCol: colTimestamp,
		vertex:       &vertexField{colFirstParam, graph.EntityPerson},
		edges: []edgeField{
			{colFirstParam, graph.EntityPerson, colPersonCity, graph.EntityPlace},
			{colFirstParam, graph.EntityPerson, colPersonTags, graph.EntityTag},
			{colFirstParam, graph.EntityPerson, colPersonStudyAt, graph.EntityOrganisation},
			{colFirstParam, graph.EntityPerson, colPersonWorkAt, graph.EntityOrganisation},
		},
	},
	AddLikePost: {
		timestampCol: colThirdParam,
		edges: []edgeField{
			{colFirstParam, graph.EntityPerson, colSecondParam, graph.EntityPost},
		},
	},
	AddLikeComment: {
		timestampCol: colThirdParam,
		edges: []edgeField{
			{colFirstParam, graph.EntityPerson, colSecondParam, graph.EntityComment},
		},
	},
	AddForum: {
		timestampCol: colThirdParam,
		vertex:       &vertexField{colFirstParam, graph.EntityForum},
		edges: []edgeField{
			{colFirstParam, graph.EntityForum, colForumModID, graph.EntityPerson},
			{colFirstParam, graph.EntityForum, colForumTags, graph.EntityTag},
		},
	},
	AddForumMembership: {
		timestampCol: colThirdParam,
		edges: []edgeField{
			{colFirstParam, graph.EntityForum, colSecondParam, graph.EntityPerson},
		},
	},
	AddPost: {
		timestampCol: colThirdParam,
		vertex:       &vertexField{colFirstParam, graph.EntityPost},
		edges: []edgeField{
			{colFirstParam, graph.EntityPost, colPostCountry, graph.EntityPlace},
			{colFirstParam, graph.EntityPost, colPostTags, graph.EntityTag},
			{colFirstParam, graph.EntityPost, colPostAuthor, graph.EntityPerson},
			{colPostForum, graph.EntityForum, colFirstParam, graph.EntityPost},
		},
	},
	AddComment: {
		timestampCol: colSecondParam,
		vertex:       &vertexField{colFirstParam, graph.EntityComment},
		edges: []edgeField{
			{colFirstParam, graph.EntityComment, colCommentAuthor, graph.EntityPerson},
			{colFirstParam, graph.EntityComment, colCommentPlace, graph.EntityPlace},
			{colFirstParam, graph.EntityComment, colCommentPost, graph.EntityPost},
			{colFirstParam, graph.EntityComment, colCommentReply, graph.EntityComment},
			{colFirstParam, graph.EntityComment, colCommentTags, graph.EntityTag},
		},
	},
	AddFriendship: {
		timestampCol: colThirdParam,
		edges: []edgeField{
			{colFirstParam, graph.EntityPerson, colSecondParam, graph.EntityPerson},
			{colSecondParam, graph.EntityPerson, colFirstParam, graph.EntityPerson},
		},
	},
}
