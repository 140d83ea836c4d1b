package expression

// Expr is a parsed expression in both token orders.
type Expr struct {
	Source  string
	Infix   []Token
	Postfix []Token
}

func Compile(source string) (*Expr, error) {
	infix, err := Parse(source)
	if err != nil {
		return nil, err
	}

	postfix, err := Shunt(infix)
	if err != nil {
		return nil, err
	}

	return &Expr{
		Source:  source,
		Infix:   infix,
		Postfix: postfix,
	}, nil
}

func (e *Expr) Evaluate() (int64, error) {
	return Interpret(e.Postfix)
}

func (e *Expr) String() string {
	return e.Source
}

// Evaluate parses, shunts and interprets source in one call.
func Evaluate(source string) (int64, error) {
	expr, err := Compile(source)
	if err != nil {
		return 0, err
	}
	return expr.Evaluate()
}
