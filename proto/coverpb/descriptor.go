// proto/coverpb/descriptor.go
package coverpb

import (
	"google.golang.org/protobuf/proto"
	"google.golang.org/protobuf/reflect/protodesc"
	"google.golang.org/protobuf/reflect/protoreflect"
	"google.golang.org/protobuf/reflect/protoregistry"
	"google.golang.org/protobuf/types/descriptorpb"
	"google.golang.org/protobuf/types/known/structpb"
	"google.golang.org/protobuf/types/known/wrapperspb"
)

// FileDescriptor describes cover.proto. It is registered in
// protoregistry.GlobalFiles so server reflection can resolve the service.
var FileDescriptor protoreflect.FileDescriptor

func init() {
	fdp := &descriptorpb.FileDescriptorProto{
		Name:    proto.String(CoverClassifier_ServiceDesc.Metadata.(string)),
		Package: proto.String("cover.v1"),
		Syntax:  proto.String("proto3"),
		Dependency: []string{
			structpb.File_google_protobuf_struct_proto.Path(),
			wrapperspb.File_google_protobuf_wrappers_proto.Path(),
		},
		Service: []*descriptorpb.ServiceDescriptorProto{{
			Name: proto.String("CoverClassifier"),
			Method: []*descriptorpb.MethodDescriptorProto{{
				Name:       proto.String("Classify"),
				InputType:  proto.String("." + string((&wrapperspb.BytesValue{}).ProtoReflect().Descriptor().FullName())),
				OutputType: proto.String("." + string((&structpb.Struct{}).ProtoReflect().Descriptor().FullName())),
			}},
		}},
		Options: &descriptorpb.FileOptions{
			GoPackage: proto.String("github.com/SyedDaiam9101/cover-service/proto/coverpb"),
		},
	}

	fd, err := protodesc.NewFile(fdp, protoregistry.GlobalFiles)
	if err != nil {
		panic("coverpb: build cover.proto descriptor: " + err.Error())
	}
	if err := protoregistry.GlobalFiles.RegisterFile(fd); err != nil {
		panic("coverpb: register cover.proto: " + err.Error())
	}
	FileDescriptor = fd
}
