package soltest

import "github.com/xab-mack/solhunt/internal/solidity"

const BankText = `pragma solidity 0.7.0;

contract Bank {
    mapping(address => uint256) bal;

    function deposit() external payable {
        bal[msg.sender] += msg.value;
    }

    function withdraw(uint256 amount) external {
        require(bal[msg.sender] >= amount, "insufficient balance");
        bal[msg.sender] -= amount;
        msg.sender.transfer(amount);
    }
}
`

// Bank is a pre-0.8 contract with unguarded balance arithmetic.
func Bank(path string) (*Source, *solidity.SourceUnit) {
	s := New(path, BankText)
	balOf := func(nth int) *solidity.IndexAccess {
		sp := s.Nth("bal[msg.sender]", nth)
		return Index(sp, Ident(s.Nth("bal[", nth), "bal", "mapping(address => uint256)"),
			MsgSender(s.Nth("msg.sender", nth)), "uint256")
	}
	amount := func(nth int) *solidity.Identifier {
		return Ident(s.Nth("amount", nth), "amount", "uint256")
	}

	deposit := Func(s.Range("function deposit", "    }"), "deposit", Block(s.Range("{\n        bal", "    }"),
		Stmt(s.At("bal[msg.sender] += msg.value;"),
			Assign(s.At("bal[msg.sender] += msg.value"), "+=", balOf(1),
				Member(s.At("msg.value"), Ident(s.Nth("msg", 2), "msg", "msg"), "value", "uint256"), "uint256")),
	))
	deposit.Visibility, deposit.StateMutability = "external", "payable"

	withdraw := Func(s.Range("function withdraw", "    }"), "withdraw", Block(s.Range("{\n        require", "    }"),
		Stmt(s.At(`require(bal[msg.sender] >= amount, "insufficient balance");`),
			Call(s.At(`require(bal[msg.sender] >= amount, "insufficient balance")`),
				Ident(s.At("require"), "require", "function (bool,string memory) pure"),
				Binary(s.At("bal[msg.sender] >= amount"), ">=", balOf(2), amount(2), "bool"),
				Str(s.At(`"insufficient balance"`), "insufficient balance"))),
		Stmt(s.At("bal[msg.sender] -= amount;"),
			Assign(s.At("bal[msg.sender] -= amount"), "-=", balOf(3), amount(3), "uint256")),
		Stmt(s.At("msg.sender.transfer(amount);"),
			Call(s.At("msg.sender.transfer(amount)"),
				Member(s.At("msg.sender.transfer"), MsgSender(s.Nth("msg.sender", 4)), "transfer", "function (uint256)"),
				amount(4))),
	), Param(s.At("uint256 amount"), "amount", "uint256"))
	withdraw.Visibility = "external"

	unit := s.Unit(
		s.Pragma("pragma solidity 0.7.0;"),
		Contract(s.Range("contract Bank", "\n}"), "Bank",
			StateVar(s.At("mapping(address => uint256) bal"), "bal", "mapping(address => uint256)", nil),
			deposit,
			withdraw,
		),
	)
	return s, unit
}

const VaultText = `pragma solidity ^0.8.4;

interface IOracle {
    function price() external view returns (uint256);
}

contract Vault {
    address public owner;
    uint256 public fee = 3;
    IOracle oracle;
    address[] public users;

    constructor(IOracle _oracle) {
        owner = msg.sender;
        oracle = _oracle;
    }

    function sweep(uint256 owner) external {
        unchecked { fee += owner; }
        for (uint256 i = 0; i < users.length; i++) {
            oracle.price();
            users[i].call("");
        }
    }
}
`

// Vault declares an interface and a contract in one file and exercises
// unchecked arithmetic, loops and constructor-only state.
func Vault(path string) (*Source, *solidity.SourceUnit) {
	s := New(path, VaultText)
	users := func(nth int) *solidity.Identifier {
		return Ident(s.Nth("users", nth+1), "users", "address[] storage ref")
	}
	i := func(nth int) *solidity.Identifier { return Ident(s.Nth("i ", nth), "i", "uint256") }

	price := &solidity.FunctionDefinition{
		Src:             s.At("function price() external view returns (uint256);"),
		Name:            "price",
		FunctionKind:    "function",
		Visibility:      "external",
		StateMutability: "view",
	}

	ctor := Constructor(s.Range("constructor", "    }"), Block(s.Range("{\n        owner", "    }"),
		Stmt(s.At("owner = msg.sender;"), Assign(s.At("owner = msg.sender"), "=",
			Ident(s.Nth("owner", 2), "owner", "address"), MsgSender(s.Nth("msg.sender", 1)), "address")),
		Stmt(s.At("oracle = _oracle;"), Assign(s.At("oracle = _oracle"), "=",
			Ident(s.At("oracle = "), "oracle", "contract IOracle"), Ident(s.Nth("_oracle", 2), "_oracle", "contract IOracle"), "contract IOracle")),
	), Param(s.At("IOracle _oracle"), "_oracle", "contract IOracle"))

	loop := &solidity.ForStatement{
		Src: s.Range("for (", "        }"),
		Init: Local(s.At("uint256 i = 0;"), Param(s.At("uint256 i"), "i", "uint256"),
			Num(s.At("0;"), "0")),
		Condition: Binary(s.At("i < users.length"), "<", i(2),
			Member(s.At("users.length"), users(1), "length", "uint256"), "bool"),
		Loop: Stmt(s.At("i++"), Unary(s.At("i++"), "++", false, Ident(s.At("i++"), "i", "uint256"))),
		Body: Block(s.Range("{\n            oracle", "        }"),
			Stmt(s.At("oracle.price();"), Call(s.At("oracle.price()"),
				Member(s.At("oracle.price"), Ident(s.At("oracle.price"), "oracle", "contract IOracle"), "price", "function () view external returns (uint256)"))),
			Stmt(s.At(`users[i].call("");`), Call(s.At(`users[i].call("")`),
				Member(s.At("users[i].call"), Index(s.At("users[i]"), users(2), Ident(s.At("i]"), "i", "uint256"), "address"), "call", "function (bytes memory) payable returns (bool,bytes memory)"),
				Str(s.At(`""`), ""))),
		),
	}
	sweep := Func(s.Range("function sweep", "\n    }"), "sweep", Block(s.Range("{\n        unchecked", "\n    }"),
		Unchecked(s.At("unchecked { fee += owner; }"),
			Stmt(s.At("fee += owner;"), Assign(s.At("fee += owner"), "+=",
				Ident(s.At("fee += "), "fee", "uint256"), Ident(s.At("owner; }"), "owner", "uint256"), "uint256"))),
		loop,
	), Param(s.At("uint256 owner"), "owner", "uint256"))
	sweep.Visibility = "external"

	unit := s.Unit(
		s.Pragma("pragma solidity ^0.8.4;"),
		Interface(s.Range("interface IOracle", "\n}"), "IOracle", price),
		Contract(s.Range("contract Vault", "\n}\n"), "Vault",
			StateVar(s.At("address public owner"), "owner", "address", nil),
			StateVar(s.At("uint256 public fee = 3"), "fee", "uint256", Num(s.At("3;"), "3")),
			StateVar(s.At("IOracle oracle;"), "oracle", "contract IOracle", nil),
			StateVar(s.At("address[] public users"), "users", "address[]", nil),
			ctor,
			sweep,
		),
	)
	return s, unit
}

const LotteryText = `pragma solidity 0.8.19;

contract Lottery {
    address owner;
    uint256 deadline;

    event Drawn(address winner);

    function draw(address[] memory players) external {
        require(tx.origin == owner, "only the owner may draw the lottery winner");
        require(block.timestamp > deadline, "too early");
        uint256 idx = uint256(keccak256(abi.encodePacked(block.timestamp, block.prevrandao))) % players.length;
        emit Drawn(players[idx]);
        if (tx.origin == msg.sender) {
            selfdestruct(payable(owner));
        }
        deadline = block.timestamp + 1 days;
    }
}
`

// Lottery misuses chain attributes and tx.origin.
func Lottery(path string) (*Source, *solidity.SourceUnit) {
	s := New(path, LotteryText)
	block := func(member string, nth int) *solidity.MemberAccess {
		sp := s.Nth("block."+member, nth)
		return Member(sp, Ident(s.Nth("block", nth), "block", "block"), member, "uint256")
	}
	txOrigin := func(nth int) *solidity.MemberAccess {
		sp := s.Nth("tx.origin", nth)
		return Member(sp, Ident(s.Nth("tx.", nth), "tx", "tx"), "origin", "address")
	}
	require := func(cond string, arg *solidity.BinaryOperation, reason string) *solidity.ExpressionStatement {
		text := "require(" + cond + `, "` + reason + `")`
		return Stmt(s.At(text+";"), Call(s.At(text),
			Ident(s.At(text), "require", "function (bool,string memory) pure"),
			arg, Str(s.At(`"`+reason+`"`), reason)))
	}
	owner := func(text string) *solidity.Identifier {
		return Ident(s.At(text), "owner", "address")
	}

	entropy := Call(s.At("keccak256(abi.encodePacked(block.timestamp, block.prevrandao))"),
		Ident(s.At("keccak256"), "keccak256", "function (bytes memory) pure returns (bytes32)"),
		Call(s.At("abi.encodePacked(block.timestamp, block.prevrandao)"),
			Member(s.At("abi.encodePacked"), Ident(s.At("abi"), "abi", "abi"), "encodePacked", "function () pure returns (bytes memory)"),
			block("timestamp", 2), block("prevrandao", 1)))
	conv := Call(s.At("uint256(keccak256(abi.encodePacked(block.timestamp, block.prevrandao)))"),
		Ident(s.At("uint256(keccak"), "uint256", "type(uint256)"), entropy)
	conv.CallKind = "typeConversion"
	conv.TypeString = "uint256"
	players := func(text string) *solidity.Identifier {
		return Ident(s.At(text), "players", "address[] memory")
	}

	draw := Func(s.Range("function draw", "\n    }"), "draw", Block(s.Range("{\n        require", "\n    }"),
		require("tx.origin == owner", Binary(s.At("tx.origin == owner"), "==", txOrigin(1), owner("owner, \"only"), "bool"),
			"only the owner may draw the lottery winner"),
		require("block.timestamp > deadline", Binary(s.At("block.timestamp > deadline"), ">", block("timestamp", 1),
			Ident(s.At("deadline, \"too"), "deadline", "uint256"), "bool"), "too early"),
		Local(s.At("uint256 idx = uint256(keccak256(abi.encodePacked(block.timestamp, block.prevrandao))) % players.length;"),
			Param(s.At("uint256 idx"), "idx", "uint256"),
			Binary(s.At("uint256(keccak256(abi.encodePacked(block.timestamp, block.prevrandao))) % players.length"), "%",
				conv, Member(s.At("players.length"), players("players.length"), "length", "uint256"), "uint256")),
		&solidity.EmitStatement{Src: s.At("emit Drawn(players[idx]);"), EventCall: Call(s.At("Drawn(players[idx])"),
			Ident(s.At("Drawn(players"), "Drawn", "function (address)"),
			Index(s.At("players[idx]"), players("players[idx]"), Ident(s.At("idx]"), "idx", "uint256"), "address"))},
		&solidity.IfStatement{
			Src:       s.Range("if (tx.origin", "        }"),
			Condition: Binary(s.At("tx.origin == msg.sender"), "==", txOrigin(2), MsgSender(s.At("msg.sender")), "bool"),
			TrueBody: Block(s.Range("{\n            selfdestruct", "        }"),
				Stmt(s.At("selfdestruct(payable(owner));"), Call(s.At("selfdestruct(payable(owner))"),
					Ident(s.At("selfdestruct"), "selfdestruct", "function (address payable)"),
					Call(s.At("payable(owner)"), Ident(s.At("payable("), "payable", "type(address payable)"), owner("owner))"))))),
		},
		Stmt(s.At("deadline = block.timestamp + 1 days;"), Assign(s.At("deadline = block.timestamp + 1 days"), "=",
			Ident(s.At("deadline = "), "deadline", "uint256"),
			Binary(s.At("block.timestamp + 1 days"), "+", block("timestamp", 3), Num(s.At("1 days"), "1"), "uint256"), "uint256")),
	), Param(s.At("address[] memory players"), "players", "address[]"))
	draw.Visibility = "external"

	unit := s.Unit(
		s.Pragma("pragma solidity 0.8.19;"),
		Contract(s.Range("contract Lottery", "\n}"), "Lottery",
			StateVar(s.At("address owner"), "owner", "address", nil),
			StateVar(s.At("uint256 deadline"), "deadline", "uint256", nil),
			&solidity.EventDefinition{Src: s.At("event Drawn(address winner);"), Name: "Drawn",
				Parameters: []solidity.Node{Param(s.At("address winner"), "winner", "address")}},
			draw,
		),
	)
	return s, unit
}

const EscrowText = `pragma solidity 0.8.19;

interface IERC20 {
    function transfer(address to, uint256 amount) external returns (bool);
}

contract Escrow {
    IERC20 token;
    mapping(address => uint256) credit;

    function tip() external payable {
    }

    function release(uint256 amount) external {
        token.transfer(msg.sender, amount);
        credit[msg.sender] = 0;
    }
}
`

// Escrow pays out a token before clearing the caller's credit and accepts
// ether it never accounts for.
func Escrow(path string) (*Source, *solidity.SourceUnit) {
	s := New(path, EscrowText)
	const creditType = "mapping(address => uint256)"

	transfer := &solidity.FunctionDefinition{
		Src:              s.At("function transfer(address to, uint256 amount) external returns (bool);"),
		Name:             "transfer",
		FunctionKind:     "function",
		Visibility:       "external",
		StateMutability:  "nonpayable",
		Parameters:       []solidity.Node{Param(s.At("address to"), "to", "address"), Param(s.Nth("uint256 amount", 1), "amount", "uint256")},
		ReturnParameters: []solidity.Node{Param(s.At("bool"), "", "bool")},
	}

	tip := Func(s.Range("function tip", "\n    }"), "tip", Block(s.At("{\n    }")))
	tip.Visibility = "external"
	tip.StateMutability = "payable"

	release := Func(s.Range("function release", "\n    }"), "release", Block(s.Range("{\n        token", "\n    }"),
		Stmt(s.At("token.transfer(msg.sender, amount);"), Call(s.At("token.transfer(msg.sender, amount)"),
			Member(s.At("token.transfer"), Ident(s.At("token.transfer"), "token", "contract IERC20"), "transfer",
				"function (address,uint256) external returns (bool)"),
			MsgSender(s.Nth("msg.sender", 1)), Ident(s.Nth("amount", 3), "amount", "uint256"))),
		Stmt(s.At("credit[msg.sender] = 0;"), Assign(s.At("credit[msg.sender] = 0"), "=",
			Index(s.At("credit[msg.sender]"), Ident(s.At("credit[msg"), "credit", creditType), MsgSender(s.Nth("msg.sender", 2)), "uint256"),
			Num(s.At("0;"), "0"), "uint256")),
	), Param(s.Nth("uint256 amount", 2), "amount", "uint256"))
	release.Visibility = "external"

	unit := s.Unit(
		s.Pragma("pragma solidity 0.8.19;"),
		Interface(s.Range("interface IERC20", "\n}"), "IERC20", transfer),
		Contract(s.Range("contract Escrow", "\n}\n"), "Escrow",
			StateVar(s.At("IERC20 token"), "token", "contract IERC20", nil),
			StateVar(s.At(creditType+" credit"), "credit", creditType, nil),
			tip,
			release,
		),
	)
	return s, unit
}

const RegistryText = `pragma solidity 0.4.24;

contract Registry {
    struct Entry {
        address owner;
    }

    mapping(bytes32 => Entry) entries;

    function () external payable {
    }

    function claim(bytes32 key) public {
        Entry storage e;
        e.owner = msg.sender;
        entries[key] = e;
    }
}
`

// Registry predates 0.5: it accepts ether in its fallback and writes through
// an uninitialized storage pointer.
func Registry(path string) (*Source, *solidity.SourceUnit) {
	s := New(path, RegistryText)
	const (
		entryType   = "struct Registry.Entry storage pointer"
		entriesType = "mapping(bytes32 => struct Registry.Entry storage ref)"
	)
	// e as written in "e.owner" and in "= e;"
	owned := s.At("e.owner")
	owned.Length = 1
	read := s.At("= e;")
	read.Start, read.Length = read.Start+2, 1

	fallback := Func(s.Range("function ()", "\n    }"), "", Block(s.At("{\n    }")))
	fallback.FunctionKind, fallback.Visibility, fallback.StateMutability = "fallback", "external", "payable"

	local := Param(s.At("Entry storage e"), "e", entryType)
	local.StorageLocation = "storage"

	claim := Func(s.Range("function claim", "\n    }"), "claim", Block(s.Range("{\n        Entry", "\n    }"),
		Local(s.At("Entry storage e;"), local, nil),
		Stmt(s.At("e.owner = msg.sender;"), Assign(s.At("e.owner = msg.sender"), "=",
			Member(s.At("e.owner"), Ident(owned, "e", entryType), "owner", "address"), MsgSender(s.At("msg.sender")), "address")),
		Stmt(s.At("entries[key] = e;"), Assign(s.At("entries[key] = e"), "=",
			Index(s.At("entries[key]"), Ident(s.At("entries[key]"), "entries", entriesType),
				Ident(s.At("key]"), "key", "bytes32"), "struct Registry.Entry storage ref"),
			Ident(read, "e", entryType), entryType)),
	), Param(s.At("bytes32 key"), "key", "bytes32"))

	unit := s.Unit(
		s.Pragma("pragma solidity 0.4.24;"),
		Contract(s.Range("contract Registry", "\n}"), "Registry",
			&solidity.StructDefinition{Src: s.Range("struct Entry", "\n    }"), Name: "Entry",
				Members: []solidity.Node{Param(s.At("address owner"), "owner", "address")}},
			StateVar(s.At("mapping(bytes32 => Entry) entries"), "entries", "mapping(bytes32 => struct Registry.Entry)", nil),
			fallback,
			claim,
		),
	)
	return s, unit
}
