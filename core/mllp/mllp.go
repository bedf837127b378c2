// Package mllp implements the Minimal Lower Layer Protocol framing used to
// carry HL7 v2 messages over TCP: a start block (0x0B), the message body,
// an end block (0x1C), and a trailing carriage return (0x0D).
package mllp

import (
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
)

const (
	startBlock byte = 0x0B
	endBlock   byte = 0x1C
	carriage   byte = 0x0D

	maxBufferSize = 4096
)

type state int

const (
	stateWaitingStart state = iota
	stateAccumulating
	stateComplete
	stateError
)

// FrameAccumulator consumes a byte stream incrementally and yields complete
// HL7 messages as they are framed. It is not safe for concurrent use: a
// connection owns exactly one accumulator, fed from a single reader
// goroutine, matching the one-owner-per-task convention used throughout
// this module's background workers.
type FrameAccumulator struct {
	state        state
	buffer       []byte
	lastActivity time.Time
	timeout      time.Duration
	errMsg       string
}

// NewFrameAccumulator creates an accumulator that considers a connection
// stalled (and resets to an error state) if no complete frame arrives
// within timeout of the last byte received.
func NewFrameAccumulator(timeout time.Duration) *FrameAccumulator {
	return &FrameAccumulator{
		state:        stateWaitingStart,
		buffer:       make([]byte, 0, maxBufferSize),
		lastActivity: time.Now(),
		timeout:      timeout,
	}
}

// Feed processes newly-received bytes and returns every complete HL7
// message framed by this call. A message is complete when SB ... EB CR has
// been seen and the accumulated bytes decode as valid UTF-8.
func (a *FrameAccumulator) Feed(data []byte) []string {
	var messages []string
	a.lastActivity = time.Now()

	for _, b := range data {
		switch a.state {
		case stateWaitingStart:
			if b == startBlock {
				a.state = stateAccumulating
				a.buffer = a.buffer[:0]
			}
			// any other byte while waiting for start is discarded

		case stateAccumulating:
			switch b {
			case startBlock:
				// a new start block restarts the frame
				a.buffer = a.buffer[:0]
			case endBlock:
				a.state = stateComplete
			default:
				a.buffer = append(a.buffer, b)
			}

		case stateComplete:
			if b == carriage {
				if isValidUTF8(a.buffer) {
					messages = append(messages, string(a.buffer))
				}
				a.state = stateWaitingStart
				a.buffer = a.buffer[:0]
			} else if b == startBlock {
				a.state = stateAccumulating
				a.buffer = a.buffer[:0]
			} else {
				// malformed trailer: drop the frame and resync
				a.state = stateWaitingStart
				a.buffer = a.buffer[:0]
			}

		case stateError:
			if b == startBlock {
				a.state = stateAccumulating
				a.buffer = a.buffer[:0]
			}
			// otherwise remain in error state until a new start arrives
		}
	}

	return messages
}

// CheckTimeout transitions the accumulator to an error state (clearing any
// partial frame) if it has been mid-frame for longer than its configured
// timeout. Returns true if a timeout was just detected.
func (a *FrameAccumulator) CheckTimeout() bool {
	if a.state == stateWaitingStart {
		return false
	}
	if time.Since(a.lastActivity) > a.timeout {
		a.state = stateError
		a.errMsg = "Timeout"
		a.buffer = a.buffer[:0]
		return true
	}
	return false
}

// IsError reports whether the accumulator is currently in the error state,
// and the reason it entered it.
func (a *FrameAccumulator) IsError() (bool, string) {
	return a.state == stateError, a.errMsg
}

func isValidUTF8(b []byte) bool {
	return strings.ToValidUTF8(string(b), "") == string(b)
}

// Frame wraps an outbound HL7 message in MLLP start/end/carriage bytes.
func Frame(content string) string {
	return fmt.Sprintf("\x0B%s\x1C\x0D", content)
}

// GenerateACK builds a positive MSA|AA HL7 acknowledgement for an inbound
// message, swapping sending/receiving application and facility per the
// HL7 convention that the responder is the original receiver.
func GenerateACK(hl7Msg string) string {
	segments := strings.Split(hl7Msg, "\r")
	if len(segments) == 0 || segments[0] == "" {
		return ""
	}

	now := time.Now().UTC().Format("20060102150405")
	mshFields := strings.Split(segments[0], "|")
	if len(mshFields) < 10 {
		return fmt.Sprintf("\x0BMSA|AA|Unknown|%s\x1C\x0D", now)
	}

	sendingApp := mshFields[2]
	sendingFac := mshFields[3]
	receivingApp := mshFields[4]
	receivingFac := mshFields[5]
	msgControlID := mshFields[9]

	ackMSH := fmt.Sprintf("MSH|^~\\&|%s|%s|%s|%s|%s||ACK|%s|P|2.3",
		receivingApp, receivingFac, sendingApp, sendingFac, now, uuid.NewString())
	ackMSA := fmt.Sprintf("MSA|AA|%s", msgControlID)

	return fmt.Sprintf("\x0B%s\r%s\x1C\x0D", ackMSH, ackMSA)
}

// GenerateNACK builds a negative MSA acknowledgement (AE: application
// error) carrying a short diagnostic reason.
func GenerateNACK(hl7Msg, reason string) string {
	segments := strings.Split(hl7Msg, "\r")
	now := time.Now().UTC().Format("20060102150405")
	if len(segments) == 0 || segments[0] == "" {
		return fmt.Sprintf("\x0BMSA|AE|Unknown|%s\x1C\x0D", now)
	}

	mshFields := strings.Split(segments[0], "|")
	if len(mshFields) < 10 {
		return fmt.Sprintf("\x0BMSA|AE|Unknown|%s\x1C\x0D", now)
	}

	sendingApp := mshFields[2]
	sendingFac := mshFields[3]
	receivingApp := mshFields[4]
	receivingFac := mshFields[5]
	msgControlID := mshFields[9]

	ackMSH := fmt.Sprintf("MSH|^~\\&|%s|%s|%s|%s|%s||ACK|%s|P|2.3",
		receivingApp, receivingFac, sendingApp, sendingFac, now, uuid.NewString())
	ackMSA := fmt.Sprintf("MSA|AE|%s|%s", msgControlID, reason)

	return fmt.Sprintf("\x0B%s\r%s\x1C\x0D", ackMSH, ackMSA)
}
