package shell

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"
	"time"

	"roomallot/internal/rooms/service"
	"roomallot/pkg/config"
	apperrors "roomallot/pkg/errors"
	"roomallot/pkg/logger"
	"roomallot/pkg/model"
)

const (
	choiceBook = iota + 1
	choiceUpdate
	choiceStatus
	choiceAvailable
	choiceBooked
	choiceExit
)

const menu = `
Room Allotment System
1. Book a room
2. Update booked room
3. Check room status
4. Check number of available rooms
5. Check number of booked rooms
6. Exit
`

const msgNotAvailable = "Room is not available for the given time range."

// Shell is the interactive console over a BookingService. It reads one
// answer per line; a malformed answer aborts only the current action.
type Shell struct {
	svc service.BookingService
	in  *bufio.Scanner
	out io.Writer
	loc *time.Location
	log *logger.Logger
}

func New(svc service.BookingService, in io.Reader, out io.Writer, loc *time.Location, log *logger.Logger) *Shell {
	if loc == nil {
		loc = time.Local
	}
	return &Shell{
		svc: svc,
		in:  bufio.NewScanner(in),
		out: out,
		loc: loc,
		log: log,
	}
}

// Run serves the menu until the user exits, input ends or ctx is done.
func (s *Shell) Run(ctx context.Context) error {
	for {
		if err := ctx.Err(); err != nil {
			return err
		}

		s.print(menu)
		line, err := s.prompt("Enter your choice: ")
		if err != nil {
			if errors.Is(err, io.EOF) {
				return nil
			}
			return err
		}

		choice, convErr := strconv.Atoi(line)
		if convErr != nil {
			choice = 0
		}

		var actionErr error
		switch choice {
		case choiceBook:
			actionErr = s.bookRoom(ctx)
		case choiceUpdate:
			actionErr = s.updateRoom(ctx)
		case choiceStatus:
			s.roomStatus(ctx)
		case choiceAvailable:
			s.printf("Number of available rooms: %d\n", s.svc.AvailableRoomCount(ctx))
		case choiceBooked:
			s.printf("Number of booked rooms: %d\n", s.svc.BookedCount(ctx))
		case choiceExit:
			s.print("Exiting program.\n")
			return nil
		default:
			s.print("Invalid choice. Please try again.\n")
		}

		if actionErr != nil {
			if errors.Is(actionErr, io.EOF) {
				return nil
			}
			s.report(actionErr)
		}
	}
}

func (s *Shell) bookRoom(ctx context.Context) error {
	req, err := s.readRequest("")
	if err != nil {
		return err
	}

	available, err := s.svc.IsAvailable(ctx, req.RoomNumber, req.StartTime, req.EndTime)
	if err != nil {
		return err
	}
	if !available {
		s.print(msgNotAvailable + "\n")
		return nil
	}

	if _, err := s.svc.Book(ctx, req); err != nil {
		return err
	}
	s.print("Room booked successfully!\n")
	return nil
}

func (s *Shell) updateRoom(ctx context.Context) error {
	index, err := s.promptInt("Enter index of the booking to update: ", "index")
	if err != nil {
		return err
	}
	req, err := s.readRequest("new ")
	if err != nil {
		return err
	}

	current, ok := s.bookingAt(ctx, index)
	if !ok {
		s.printf("No booking found at index %d.\n", index)
		return nil
	}

	available, err := s.svc.IsAvailable(ctx, req.RoomNumber, req.StartTime, req.EndTime)
	if err != nil {
		return err
	}
	if !available && !ownsSlot(current, req) {
		s.print(msgNotAvailable + "\n")
		return nil
	}

	if _, err := s.svc.Update(ctx, index, req); err != nil {
		return err
	}
	s.print("Room updated successfully!\n")
	return nil
}

func (s *Shell) bookingAt(ctx context.Context, index int) (model.Booking, bool) {
	bookings := s.svc.List(ctx)
	if index < 0 || index >= len(bookings) {
		return model.Booking{}, false
	}
	return bookings[index], true
}

// ownsSlot reports whether the only thing blocking an update could be the
// booking's own current reservation, which the ledger ignores. The ledger
// still makes the final call.
func ownsSlot(current model.Booking, req *model.BookingRequest) bool {
	return current.RoomNumber == req.RoomNumber &&
		current.Interval().Overlaps(model.Interval{Start: req.StartTime, End: req.EndTime})
}

func (s *Shell) roomStatus(ctx context.Context) {
	s.print("Room Status:\n")
	for _, b := range s.svc.List(ctx) {
		s.printf("Room %d booked by %s from %s to %s with %d chairs.\n",
			b.RoomNumber,
			b.Host,
			b.StartTime.In(s.loc).Format(config.DateTimeLayout),
			b.EndTime.In(s.loc).Format(config.DateTimeLayout),
			b.Chairs,
		)
	}
}

func (s *Shell) readRequest(qualifier string) (*model.BookingRequest, error) {
	host, err := s.prompt(fmt.Sprintf("Enter %shost name: ", qualifier))
	if err != nil {
		return nil, err
	}
	start, err := s.promptTime(fmt.Sprintf("Enter %sstart time (YYYY-MM-DD HH:MM): ", qualifier), "start time")
	if err != nil {
		return nil, err
	}
	end, err := s.promptTime(fmt.Sprintf("Enter %send time (YYYY-MM-DD HH:MM): ", qualifier), "end time")
	if err != nil {
		return nil, err
	}
	chairs, err := s.promptInt(fmt.Sprintf("Enter %snumber of chairs needed: ", qualifier), "number of chairs")
	if err != nil {
		return nil, err
	}
	room, err := s.promptInt(fmt.Sprintf("Enter %sroom number (1-%d): ", qualifier, config.RoomCount), "room number")
	if err != nil {
		return nil, err
	}

	return &model.BookingRequest{
		Host:       host,
		StartTime:  start,
		EndTime:    end,
		Chairs:     chairs,
		RoomNumber: room,
	}, nil
}

func (s *Shell) prompt(label string) (string, error) {
	s.print(label)
	if !s.in.Scan() {
		if err := s.in.Err(); err != nil {
			return "", err
		}
		return "", io.EOF
	}
	return strings.TrimSpace(s.in.Text()), nil
}

func (s *Shell) promptInt(label, field string) (int, error) {
	line, err := s.prompt(label)
	if err != nil {
		return 0, err
	}
	n, err := strconv.Atoi(line)
	if err != nil {
		return 0, apperrors.InvalidInput(fmt.Sprintf("%s must be a whole number, got %q", field, line))
	}
	return n, nil
}

func (s *Shell) promptTime(label, field string) (time.Time, error) {
	line, err := s.prompt(label)
	if err != nil {
		return time.Time{}, err
	}
	t, err := time.ParseInLocation(config.DateTimeLayout, line, s.loc)
	if err != nil {
		return time.Time{}, apperrors.InvalidInput(fmt.Sprintf("%s must be in YYYY-MM-DD HH:MM format, got %q", field, line))
	}
	return t, nil
}

func (s *Shell) report(err error) {
	appErr := apperrors.AsAppError(err)
	switch appErr.Code {
	case apperrors.CodeConflict:
		s.print(msgNotAvailable + "\n")
	case apperrors.CodeNotFound:
		s.printf("No booking found at index %v.\n", appErr.Details["id"])
	case apperrors.CodeValidation, apperrors.CodeInvalidInput:
		msg := appErr.Message
		if detail, ok := appErr.Details["error"].(string); ok {
			msg = detail
		}
		s.printf("Invalid input: %s\n", msg)
	default:
		s.log.Error("Console action failed", "error", err)
		s.printf("Error: %s\n", appErr.Message)
	}
}

func (s *Shell) print(text string) {
	_, _ = io.WriteString(s.out, text)
}

func (s *Shell) printf(format string, args ...any) {
	_, _ = fmt.Fprintf(s.out, format, args...)
}
