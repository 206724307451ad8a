package gitlet

// Kind is the closed taxonomy of domain-level error conditions. Every
// command failure that is part of the documented contract is one of
// these; anything else (a corrupted object file, a permissions error) is
// an ordinary wrapped error and not part of this table.
type Kind int

const (
	_ Kind = iota
	NoCommand
	UnknownCommand
	BadOperands
	EmptyCommitMessage
	NotInitialized
	AlreadyInitialized
	FileMissing
	NoChanges
	NothingToRemove
	NoSuchMessage
	NotInCommit
	NoSuchCommit
	ShortID
	AmbiguousID
	NoSuchBranch
	AlreadyOnBranch
	BranchExists
	RemoveCurrentBranch
	UntrackedOverwrite
	UncommittedChanges
	MergeWithSelf
)

var kindMessages = map[Kind]string{
	NoCommand:            "Please enter a command.",
	UnknownCommand:       "No command with that name exists.",
	BadOperands:          "Incorrect operands.",
	EmptyCommitMessage:   "Please enter a commit message.",
	NotInitialized:       "Not in an initialized Gitlet directory.",
	AlreadyInitialized:   "A Gitlet version-control system already exists in the current directory.",
	FileMissing:          "File does not exist.",
	NoChanges:            "No changes added to the commit.",
	NothingToRemove:      "No reason to remove the file.",
	NoSuchMessage:        "Found no commit with that message.",
	NotInCommit:          "File does not exist in that commit.",
	NoSuchCommit:         "No commit with that id exists.",
	ShortID:              "Commit id should contain at least 4 characters.",
	AmbiguousID:          "More than 1 commit has the same id prefix.",
	NoSuchBranch:         "A branch with that name does not exist.",
	AlreadyOnBranch:      "No need to checkout the current branch.",
	BranchExists:         "A branch with that name already exists.",
	RemoveCurrentBranch:  "Cannot remove the current branch.",
	UntrackedOverwrite:   "There is an untracked file in the way; delete it, or add and commit it first.",
	UncommittedChanges:   "You have uncommitted changes.",
	MergeWithSelf:        "Cannot merge a branch with itself.",
}

// Error is a domain-level error: one of the closed Kind values. It carries
// no further context; its text is exactly the Kind's mandated message.
type Error struct {
	Kind Kind
}

func (e *Error) Error() string {
	msg, ok := kindMessages[e.Kind]
	if !ok {
		return "unknown gitlet error"
	}
	return msg
}

// NewError constructs a domain Error of the given kind.
func NewError(k Kind) *Error { return &Error{Kind: k} }

// KindOf reports the Kind of err if it is a *Error, and ok=false
// otherwise.
func KindOf(err error) (Kind, bool) {
	e, ok := err.(*Error)
	if !ok {
		return 0, false
	}
	return e.Kind, true
}
