package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"strings"
	"time"

	"google.golang.org/grpc"
	"google.golang.org/grpc/credentials/insecure"
	"google.golang.org/grpc/metadata"
	"google.golang.org/protobuf/encoding/protojson"
	"google.golang.org/protobuf/types/known/structpb"

	"github.com/light-bringer/storefront-filters/internal/app/filter/shop"
	"github.com/light-bringer/storefront-filters/internal/transport/grpc/filter"
)

var (
	addr    = flag.String("addr", "localhost:9090", "gRPC server address")
	shopDom = flag.String("shop", "", "Shop domain, sent as metadata")
	timeout = flag.Duration("timeout", 10*time.Second, "Request timeout")
)

// Usage: filterprobe -shop demo.myshopify.com collection=shirts vendor=Acme minPrice=10
func main() {
	flag.Parse()

	req, err := buildRequest(flag.Args())
	if err != nil {
		log.Fatalf("Invalid arguments: %v", err)
	}

	conn, err := grpc.NewClient(*addr, grpc.WithTransportCredentials(insecure.NewCredentials()))
	if err != nil {
		log.Fatalf("Failed to connect: %v", err)
	}
	defer conn.Close()

	ctx, cancel := context.WithTimeout(context.Background(), *timeout)
	defer cancel()
	if *shopDom != "" {
		ctx = metadata.AppendToOutgoingContext(ctx, strings.ToLower(shop.HeaderShopDomain), *shopDom)
	}

	client := filter.NewFilterServiceClient(conn)
	resp, err := client.FilterProducts(ctx, req)
	if err != nil {
		log.Fatalf("FilterProducts failed: %v", err)
	}

	out, err := protojson.MarshalOptions{Multiline: true, Indent: "  "}.Marshal(resp)
	if err != nil {
		log.Fatalf("Failed to render response: %v", err)
	}
	fmt.Println(string(out))
}

// buildRequest turns key=value arguments into the request struct.
func buildRequest(args []string) (*structpb.Struct, error) {
	fields := make(map[string]any, len(args))
	for _, arg := range args {
		key, value, ok := strings.Cut(arg, "=")
		if !ok || key == "" {
			return nil, fmt.Errorf("expected key=value, got %q", arg)
		}
		fields[key] = value
	}
	return structpb.NewStruct(fields)
}
