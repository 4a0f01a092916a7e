package journal

import "errors"

type multi struct {
	sinks []Journal
}

// Multi fans every record out to all sinks in order. The first write error
// stops the fan-out; Close always reaches every sink.
func Multi(sinks ...Journal) Journal {
	return &multi{sinks: sinks}
}

func (m *multi) RecordRun(r RunRecord) error {
	for _, s := range m.sinks {
		if err := s.RecordRun(r); err != nil {
			return err
		}
	}
	return nil
}

func (m *multi) RecordTrade(r TradeRecord) error {
	for _, s := range m.sinks {
		if err := s.RecordTrade(r); err != nil {
			return err
		}
	}
	return nil
}

func (m *multi) RecordSnapshot(r SnapshotRecord) error {
	for _, s := range m.sinks {
		if err := s.RecordSnapshot(r); err != nil {
			return err
		}
	}
	return nil
}

func (m *multi) Close() error {
	var errs []error
	for _, s := range m.sinks {
		if err := s.Close(); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}
