package assets

import (
	"errors"
	"fmt"
	"sync"

	"google.golang.org/protobuf/encoding/prototext"
	"google.golang.org/protobuf/proto"
	"google.golang.org/protobuf/reflect/protodesc"
	"google.golang.org/protobuf/reflect/protoreflect"
	"google.golang.org/protobuf/types/descriptorpb"
	"google.golang.org/protobuf/types/dynamicpb"
)

// Marker file names of a SavedModel directory.
const (
	SavedModelPB    = "saved_model.pb"
	SavedModelPBTxt = "saved_model.pbtxt"
)

// ErrNoMetaGraphs is returned for a text SavedModel without any meta graph.
var ErrNoMetaGraphs = errors.New("saved model declares no meta_graphs")

// savedModelFile describes the subset of tensorflow/core/protobuf/saved_model.proto
// needed to decode the top-level structure. Fields not declared here are kept
// as unknown fields in binary input and discarded in text input.
func savedModelFile() *descriptorpb.FileDescriptorProto {
	field := func(name string, number int32, label descriptorpb.FieldDescriptorProto_Label,
		typ descriptorpb.FieldDescriptorProto_Type, typeName, jsonName string) *descriptorpb.FieldDescriptorProto {
		f := &descriptorpb.FieldDescriptorProto{
			Name:     proto.String(name),
			Number:   proto.Int32(number),
			Label:    label.Enum(),
			Type:     typ.Enum(),
			JsonName: proto.String(jsonName),
		}
		if typeName != "" {
			f.TypeName = proto.String(typeName)
		}
		return f
	}
	const (
		optional = descriptorpb.FieldDescriptorProto_LABEL_OPTIONAL
		repeated = descriptorpb.FieldDescriptorProto_LABEL_REPEATED
	)

	return &descriptorpb.FileDescriptorProto{
		Name:    proto.String("tensorflow/core/protobuf/saved_model.proto"),
		Package: proto.String("tensorflow"),
		Syntax:  proto.String("proto3"),
		MessageType: []*descriptorpb.DescriptorProto{
			{
				Name: proto.String("SavedModel"),
				Field: []*descriptorpb.FieldDescriptorProto{
					field("saved_model_schema_version", 1, optional,
						descriptorpb.FieldDescriptorProto_TYPE_INT64, "", "savedModelSchemaVersion"),
					field("meta_graphs", 2, repeated,
						descriptorpb.FieldDescriptorProto_TYPE_MESSAGE, ".tensorflow.MetaGraphDef", "metaGraphs"),
				},
			},
			{
				Name: proto.String("MetaGraphDef"),
				Field: []*descriptorpb.FieldDescriptorProto{
					field("meta_info_def", 1, optional,
						descriptorpb.FieldDescriptorProto_TYPE_MESSAGE, ".tensorflow.MetaInfoDef", "metaInfoDef"),
					field("graph_def", 2, optional,
						descriptorpb.FieldDescriptorProto_TYPE_MESSAGE, ".tensorflow.GraphDef", "graphDef"),
				},
			},
			{
				Name: proto.String("MetaInfoDef"),
				Field: []*descriptorpb.FieldDescriptorProto{
					field("meta_graph_version", 1, optional,
						descriptorpb.FieldDescriptorProto_TYPE_STRING, "", "metaGraphVersion"),
					field("tags", 4, repeated,
						descriptorpb.FieldDescriptorProto_TYPE_STRING, "", "tags"),
					field("tensorflow_version", 5, optional,
						descriptorpb.FieldDescriptorProto_TYPE_STRING, "", "tensorflowVersion"),
					field("tensorflow_git_version", 6, optional,
						descriptorpb.FieldDescriptorProto_TYPE_STRING, "", "tensorflowGitVersion"),
				},
			},
			{Name: proto.String("GraphDef")},
		},
	}
}

var savedModelDescriptor = sync.OnceValues(func() (protoreflect.MessageDescriptor, error) {
	fd, err := protodesc.NewFile(savedModelFile(), nil)
	if err != nil {
		return nil, fmt.Errorf("failed to build SavedModel descriptor: %w", err)
	}
	return fd.Messages().ByName("SavedModel"), nil
})

// SavedModelInfo summarizes a decoded SavedModel.
type SavedModelInfo struct {
	Tags          []string
	SchemaVersion int64
	MetaGraphs    int
}

// NewSavedModel returns an empty SavedModel message.
func NewSavedModel() (*dynamicpb.Message, error) {
	md, err := savedModelDescriptor()
	if err != nil {
		return nil, err
	}
	return dynamicpb.NewMessage(md), nil
}

// DecodeSavedModel parses the binary wire format of saved_model.pb.
func DecodeSavedModel(data []byte) (SavedModelInfo, error) {
	msg, err := NewSavedModel()
	if err != nil {
		return SavedModelInfo{}, err
	}
	if err := proto.Unmarshal(data, msg); err != nil {
		return SavedModelInfo{}, err
	}
	return summarize(msg), nil
}

// DecodeSavedModelText parses the text format of saved_model.pbtxt.
// Fields below MetaGraphDef are not declared, so unknown names are
// discarded and at least one meta graph is required instead.
func DecodeSavedModelText(data []byte) (SavedModelInfo, error) {
	msg, err := NewSavedModel()
	if err != nil {
		return SavedModelInfo{}, err
	}
	if err := (prototext.UnmarshalOptions{DiscardUnknown: true}).Unmarshal(data, msg); err != nil {
		return SavedModelInfo{}, err
	}
	info := summarize(msg)
	if info.MetaGraphs == 0 {
		return SavedModelInfo{}, ErrNoMetaGraphs
	}
	return info, nil
}

func summarize(msg *dynamicpb.Message) SavedModelInfo {
	fields := msg.Descriptor().Fields()
	info := SavedModelInfo{
		SchemaVersion: msg.Get(fields.ByName("saved_model_schema_version")).Int(),
	}

	graphs := msg.Get(fields.ByName("meta_graphs")).List()
	info.MetaGraphs = graphs.Len()
	for i := 0; i < graphs.Len(); i++ {
		graph := graphs.Get(i).Message()
		metaInfo := graph.Get(graph.Descriptor().Fields().ByName("meta_info_def")).Message()
		tags := metaInfo.Get(metaInfo.Descriptor().Fields().ByName("tags")).List()
		for j := 0; j < tags.Len(); j++ {
			info.Tags = append(info.Tags, tags.Get(j).String())
		}
	}
	return info
}
