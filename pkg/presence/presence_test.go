package presence

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/platinummonkey/protocheck/pkg/schema"
)

func testFile(fields ...*schema.Field) *schema.File {
	for i, f := range fields {
		f.Number = int32(i + 1)
	}
	return &schema.File{
		Path:    "test.proto",
		Package: "test",
		Syntax:  schema.SyntaxProto3,
		Messages: []*schema.Message{
			{Name: "Holder", Fields: fields},
			{Name: "Other"},
		},
		Enums: []*schema.Enum{{Name: "Color"}},
	}
}

func TestClassify(t *testing.T) {
	tests := []struct {
		name  string
		field *schema.Field
		want  Classification
	}{
		{
			name:  "implicit scalar",
			field: &schema.Field{Name: "count", Type: schema.Scalar("int32")},
			want:  Classification{Tracked: false, Source: SourceImplicit},
		},
		{
			name:  "optional scalar",
			field: &schema.Field{Name: "count", Type: schema.Scalar("int32"), Presence: schema.PresenceOptional},
			want:  Classification{Tracked: true, Source: SourceExplicit},
		},
		{
			name:  "name never matters",
			field: &schema.Field{Name: "optional_maybe_nullable", Type: schema.Scalar("string")},
			want:  Classification{Tracked: false, Source: SourceImplicit},
		},
		{
			name:  "implicit enum",
			field: &schema.Field{Name: "color", Type: schema.Named("Color")},
			want:  Classification{Tracked: false, Source: SourceImplicit},
		},
		{
			name:  "optional enum",
			field: &schema.Field{Name: "color", Type: schema.Named("Color"), Presence: schema.PresenceOptional},
			want:  Classification{Tracked: true, Source: SourceExplicit},
		},
		{
			name:  "message field",
			field: &schema.Field{Name: "other", Type: schema.Named("Other")},
			want:  Classification{Tracked: true, Source: SourceMessage},
		},
		{
			name:  "oneof member",
			field: &schema.Field{Name: "count", Type: schema.Scalar("int32"), Oneof: "choice"},
			want:  Classification{Tracked: true, Source: SourceOneof},
		},
		{
			name:  "proto2 required",
			field: &schema.Field{Name: "count", Type: schema.Scalar("int32"), Required: true},
			want:  Classification{Tracked: true, Source: SourceRequired},
		},
		{
			name:  "repeated",
			field: &schema.Field{Name: "tags", Type: schema.Scalar("string"), Cardinality: schema.CardinalityRepeated},
			want:  Classification{Tracked: false, Source: SourceCollection},
		},
		{
			name:  "optional repeated is misuse",
			field: &schema.Field{Name: "tags", Type: schema.Scalar("string"), Cardinality: schema.CardinalityRepeated, Presence: schema.PresenceOptional},
			want:  Classification{Tracked: false, Source: SourceCollection, Misuse: true},
		},
		{
			name:  "optional map is misuse",
			field: &schema.Field{Name: "labels", Type: schema.Scalar("string"), Cardinality: schema.CardinalityMap, Presence: schema.PresenceOptional},
			want:  Classification{Tracked: false, Source: SourceCollection, Misuse: true},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			file := testFile(tt.field)
			c := NewClassifier(schema.Build([]*schema.File{file}))

			got := c.Classify(file, tt.field)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestClassifyWithoutSet(t *testing.T) {
	field := &schema.Field{Name: "other", Type: schema.Named("Other")}
	file := testFile(field)

	got := NewClassifier(nil).Classify(file, field)
	assert.False(t, got.Tracked, "unresolved named types fall back to scalar rules")
}

func TestClassifyFile(t *testing.T) {
	a := &schema.Field{Name: "a", Type: schema.Scalar("int32"), Presence: schema.PresenceOptional}
	b := &schema.Field{Name: "b", Type: schema.Scalar("int32")}
	file := testFile(a, b)

	got := NewClassifier(schema.Build([]*schema.File{file})).ClassifyFile(file)
	assert.Len(t, got, 2)
	assert.True(t, got[a].Tracked)
	assert.False(t, got[b].Tracked)
}
