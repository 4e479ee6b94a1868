/*
Package sqlmagic runs SQL written with host variables against a database.

Statements are written as ordinary SQL containing :name placeholders. Before a
statement is run each placeholder is replaced with the value of the variable
of that name, written as a SQL literal. The engine does not parse SQL, it only
looks for placeholders outside of quoted text.

# Basics

Given the variable environment

	env := sqlmagic.M{"dept": "A00", "ids": []int{10, 20}, "limit": 5}

the template

	SELECT * FROM EMPLOYEE WHERE WORKDEPT = :dept AND ID IN (:ids) FETCH FIRST :limit ROWS ONLY

is run as

	SELECT * FROM EMPLOYEE WHERE WORKDEPT = 'A00' AND ID IN (10,20) FETCH FIRST 5 ROWS ONLY

Strings are quoted with every embedded single quote doubled, numbers are
written as they are, lists are written as their comma separated elements and
maps and structs are written as quoted JSON. Text starting with 0x is written
unquoted as a hexadecimal literal. A placeholder naming an unknown variable is
left in the statement unchanged.

# Commands

Engine.Run accepts a batch of statements separated by a delimiter, or one of
the commands PREPARE, EXECUTE, CALL, COMMIT, ROLLBACK and AUTOCOMMIT:

	PREPARE INSERT INTO T VALUES (?*3)
	EXECUTE 1b4e28ba2fa1 USING :a, 'x', 5.5
	CALL MYSCHEMA.MYPROC(:a, 'x', , 5)

PREPARE returns a statement ID. The shorthand ?*N stands for N parameter
markers. EXECUTE binds constants and variables to the markers; a variable may
name its bind type, as in photo@binary. COMMIT and ROLLBACK discard every
prepared statement unless COMMIT HOLD is used.

# Status

Every operation records a Db2 style status, a SQLCODE, a SQLSTATE and a
message, available from Engine.Status. An operation that finds or changes no
rows succeeds with SQLCODE 100.
*/
package sqlmagic
