package log

// Discard is a Logger that drops every message
var Discard Logger = discard{}

type discard struct{}

func (discard) Debug(...interface{})            {}
func (discard) Debugf(string, ...interface{})   {}
func (discard) Notice(...interface{})           {}
func (discard) Noticef(string, ...interface{})  {}
func (discard) Info(...interface{})             {}
func (discard) Infof(string, ...interface{})    {}
func (discard) Warning(...interface{})          {}
func (discard) Warningf(string, ...interface{}) {}
func (discard) Error(...interface{})            {}
func (discard) Errorf(string, ...interface{})   {}
