// probe drives AnonymousSessionService end to end against a running server for local testing:
// it creates a session, validates it, records activity, prints the session and invalidates it.
//
//	go run ./cmd/probe --addr localhost:8080 --activity post_created --count 3
package main

import (
	"context"
	"fmt"
	"log"
	"os"
	"time"

	"github.com/spf13/pflag"
	"google.golang.org/grpc"
	"google.golang.org/grpc/credentials/insecure"
	"google.golang.org/grpc/metadata"

	anonsessionv1 "juribank/backend/api/anonsession/v1"
)

func main() {
	addr := pflag.String("addr", "localhost:8080", "gRPC address of the session service")
	ip := pflag.String("ip", "203.0.113.10", "client address sent as x-forwarded-for")
	lang := pflag.String("accept-language", "en-GB,en;q=0.9", "accept-language sent with every call")
	activity := pflag.String("activity", "post_created", "activity type to record")
	count := pflag.Int("count", 1, "number of activities to record")
	keep := pflag.Bool("keep", false, "do not invalidate the session at the end")
	timeout := pflag.Duration("timeout", 10*time.Second, "overall deadline")
	pflag.Parse()

	conn, err := grpc.NewClient(*addr, grpc.WithTransportCredentials(insecure.NewCredentials()))
	if err != nil {
		log.Fatalf("probe: dial: %v", err)
	}
	defer conn.Close()
	client := anonsessionv1.NewAnonymousSessionServiceClient(conn)

	ctx, cancel := context.WithTimeout(context.Background(), *timeout)
	defer cancel()
	ctx = metadata.AppendToOutgoingContext(ctx,
		"x-forwarded-for", *ip,
		"accept-language", *lang,
		"accept-encoding", "gzip",
		"accept", "application/json",
	)

	if err := run(ctx, client, *activity, *count, *keep); err != nil {
		fmt.Fprintln(os.Stderr, "probe:", err)
		os.Exit(1)
	}
}

func run(ctx context.Context, client *anonsessionv1.AnonymousSessionServiceClient, activity string, count int, keep bool) error {
	created, err := client.CreateSession(ctx, &anonsessionv1.CreateSessionRequest{})
	if err != nil {
		return fmt.Errorf("create session: %w", err)
	}
	fmt.Printf("session %s expires %s\n", created.SessionID, created.ExpiresAt.Format(time.RFC3339))

	authed := metadata.AppendToOutgoingContext(ctx, "authorization", "Bearer "+created.Token)
	if _, err := client.ValidateSession(authed, &anonsessionv1.ValidateSessionRequest{}); err != nil {
		return fmt.Errorf("validate session: %w", err)
	}
	for i := 0; i < count; i++ {
		if _, err := client.TrackActivity(authed, &anonsessionv1.TrackActivityRequest{ActivityType: activity}); err != nil {
			return fmt.Errorf("track activity %d: %w", i+1, err)
		}
	}

	info, err := client.GetSessionInfo(authed, &anonsessionv1.GetSessionInfoRequest{})
	if err != nil {
		return fmt.Errorf("get session info: %w", err)
	}
	a := info.Activity
	fmt.Printf("activity: posts=%d replies=%d likes=%d reports=%d warnings=%d prompts=%d\n",
		a.Posts, a.Replies, a.Likes, a.Reports, a.ComplianceWarnings, a.EducationalPrompts)
	fmt.Printf("last active %s\n", info.LastActive.Format(time.RFC3339))

	if keep {
		fmt.Printf("token %s\n", created.Token)
		return nil
	}
	out, err := client.InvalidateSession(authed, &anonsessionv1.InvalidateSessionRequest{})
	if err != nil {
		return fmt.Errorf("invalidate session: %w", err)
	}
	fmt.Printf("invalidated: %t\n", out.Invalidated)
	return nil
}
