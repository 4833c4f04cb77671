package main

import (
	"bufio"
	"encoding/json"
	"flag"
	"fmt"
	"log"
	"math/rand"
	"os"
	"os/signal"
	"strings"
	"sync"
	"sync/atomic"
	"syscall"
	"time"

	"github.com/IBM/sarama"
	"github.com/google/uuid"
)

// ScoreSubmission represents a score submission message
type ScoreSubmission struct {
	PlayerID    uuid.UUID `json:"player_id"`
	Score       int64     `json:"score"`
	SubmittedAt time.Time `json:"submitted_at"`
}

// loadPlayerIDs reads player ids from a file, one uuid per line. Use the ids
// of real signed-up players so submissions land on existing ledger rows.
func loadPlayerIDs(path string) ([]uuid.UUID, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	var ids []uuid.UUID
	scanner := bufio.NewScanner(f)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			continue
		}
		id, err := uuid.Parse(line)
		if err != nil {
			return nil, fmt.Errorf("line %q: %w", line, err)
		}
		ids = append(ids, id)
	}
	return ids, scanner.Err()
}

func main() {
	// Command line flags
	brokers := flag.String("brokers", "localhost:9094", "Kafka brokers (comma-separated)")
	topic := flag.String("topic", "score-submissions", "Kafka topic")
	idsFile := flag.String("ids-file", "", "File with player UUIDs, one per line (random UUIDs when empty)")
	totalPlayers := flag.Int("players", 1000, "Number of players to simulate when no ids file is given")
	updatesPerSecond := flag.Int("rate", 100, "Submissions per second")
	maxScore := flag.Int64("max-score", 5000, "Upper bound for generated scores")
	duration := flag.Duration("duration", 0, "Duration to run (0 = forever)")
	flag.Parse()

	brokerList := strings.Split(*brokers, ",")

	var players []uuid.UUID
	if *idsFile != "" {
		var err error
		players, err = loadPlayerIDs(*idsFile)
		if err != nil {
			log.Fatalf("Failed to load player ids: %v", err)
		}
		if len(players) == 0 {
			log.Fatalf("No player ids in %s", *idsFile)
		}
	} else {
		// Random ids exercise the unknown-player path unless the consumer's
		// service knows them, so prefer -ids-file against a live stack.
		players = make([]uuid.UUID, *totalPlayers)
		for i := range players {
			players[i] = uuid.New()
		}
	}

	fmt.Println("Score submission producer")
	fmt.Printf("  Brokers:      %s\n", *brokers)
	fmt.Printf("  Topic:        %s\n", *topic)
	fmt.Printf("  Players:      %d\n", len(players))
	fmt.Printf("  Rate:         %d/sec\n", *updatesPerSecond)
	fmt.Println()

	// Configure Sarama producer
	config := sarama.NewConfig()
	config.Producer.RequiredAcks = sarama.WaitForLocal
	config.Producer.Compression = sarama.CompressionSnappy
	config.Producer.Flush.Frequency = 100 * time.Millisecond
	config.Producer.Flush.Messages = 100
	config.Producer.Return.Successes = true
	config.Producer.Return.Errors = true

	// Create producer
	producer, err := sarama.NewAsyncProducer(brokerList, config)
	if err != nil {
		log.Fatalf("Failed to create producer: %v", err)
	}
	defer producer.Close()

	// Handle producer errors and successes
	var successCount, errorCount int64
	var wg sync.WaitGroup

	wg.Add(1)
	go func() {
		defer wg.Done()
		for range producer.Successes() {
			atomic.AddInt64(&successCount, 1)
		}
	}()

	wg.Add(1)
	go func() {
		defer wg.Done()
		for err := range producer.Errors() {
			atomic.AddInt64(&errorCount, 1)
			log.Printf("Producer error: %v", err)
		}
	}()

	// Handle shutdown
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)

	done := make(chan struct{})

	// Send message helper
	sendMessage := func(submission ScoreSubmission) {
		data, err := json.Marshal(submission)
		if err != nil {
			log.Printf("Failed to marshal message: %v", err)
			return
		}

		msg := &sarama.ProducerMessage{
			Topic: *topic,
			Key:   sarama.StringEncoder(submission.PlayerID.String()),
			Value: sarama.ByteEncoder(data),
		}

		select {
		case producer.Input() <- msg:
		case <-done:
			return
		}
	}

	shutdown := func() {
		close(done)
		producer.AsyncClose()
		wg.Wait()
		fmt.Printf("\nCompleted. Sent: %d, Errors: %d\n", atomic.LoadInt64(&successCount), atomic.LoadInt64(&errorCount))
	}

	fmt.Printf("Submitting scores (%d/sec), press Ctrl+C to stop\n\n", *updatesPerSecond)

	interval := time.Second / time.Duration(*updatesPerSecond)
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	statsTicker := time.NewTicker(5 * time.Second)
	defer statsTicker.Stop()

	var endTime time.Time
	if *duration > 0 {
		endTime = time.Now().Add(*duration)
	}

	var updateCount int64

	for {
		select {
		case <-sigChan:
			fmt.Println("\nShutting down...")
			shutdown()
			return

		case <-ticker.C:
			if *duration > 0 && time.Now().After(endTime) {
				fmt.Println("\nDuration reached, shutting down...")
				shutdown()
				return
			}

			// Bias toward a small pool of hot players so ranks keep moving
			var playerIdx int
			if len(players) > 20 && rand.Intn(100) < 70 {
				playerIdx = rand.Intn(20)
			} else {
				playerIdx = rand.Intn(len(players))
			}

			submission := ScoreSubmission{
				PlayerID:    players[playerIdx],
				Score:       rand.Int63n(*maxScore + 1),
				SubmittedAt: time.Now().UTC(),
			}
			sendMessage(submission)
			atomic.AddInt64(&updateCount, 1)

		case <-statsTicker.C:
			updates := atomic.LoadInt64(&updateCount)
			success := atomic.LoadInt64(&successCount)
			errors := atomic.LoadInt64(&errorCount)
			fmt.Printf("[%s] Submitted: %d | Sent: %d | Errors: %d\n",
				time.Now().Format("15:04:05"),
				updates,
				success,
				errors,
			)
		}
	}
}
